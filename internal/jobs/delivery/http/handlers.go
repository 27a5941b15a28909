package http

import (
	"net/http"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type jobsHandler struct {
	jobsUC jobs.UseCase
}

func NewJobsHandler(jobsUC jobs.UseCase) jobs.Handler {
	return &jobsHandler{
		jobsUC: jobsUC,
	}
}

func (h *jobsHandler) ListAvailableJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		available, err := h.jobsUC.ListAvailableJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, available)
	}
}

func (h *jobsHandler) ClaimJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.ClaimInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		claimed, err := h.jobsUC.ClaimJob(c.Request().Context(), c.Param("job_id"), input)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotAvailable) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "Job not available for claiming"})
			}
			if errors.Is(err, jobs.ErrStoreUnavailable) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Job store unavailable"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, claimed)
	}
}

func (h *jobsHandler) ReportProgress() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.ProgressInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		err := h.jobsUC.ReportProgress(c.Request().Context(), c.Param("job_id"), input)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			if errors.Is(err, jobs.ErrStoreUnavailable) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Job store unavailable"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Progress updated"})
	}
}

func (h *jobsHandler) CompleteJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.CompleteInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		err := h.jobsUC.CompleteJob(c.Request().Context(), c.Param("job_id"), input)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			if errors.Is(err, jobs.ErrStoreUnavailable) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Job store unavailable"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Job completed"})
	}
}

func (h *jobsHandler) GetJobByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.jobsUC.GetJob(c.Request().Context(), c.Param("job_id"))
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *jobsHandler) GetActiveJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		active, err := h.jobsUC.GetActiveJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, active)
	}
}

func (h *jobsHandler) GetAvailableJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		available, err := h.jobsUC.GetAvailableJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, available)
	}
}

func (h *jobsHandler) GetRecentJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		recent, err := h.jobsUC.GetRecentJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, recent)
	}
}

func (h *jobsHandler) GetJobsCompletedToday() echo.HandlerFunc {
	return func(c echo.Context) error {
		completed, err := h.jobsUC.GetJobsCompletedToday(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, completed)
	}
}

func (h *jobsHandler) GetLastCompletedJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		completed, err := h.jobsUC.GetLastCompletedJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, completed)
	}
}

func (h *jobsHandler) GetCompletedJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		completed, err := h.jobsUC.GetCompletedJobs(c.Request().Context(), pagination)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, completed)
	}
}

func (h *jobsHandler) GetJobsByEncoder() echo.HandlerFunc {
	return func(c echo.Context) error {
		encoderID := c.Param("encoder_id")
		if encoderID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Encoder id is required"})
		}
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		jobList, err := h.jobsUC.GetJobsByEncoder(c.Request().Context(), encoderID, pagination)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, jobList)
	}
}

func (h *jobsHandler) GetActiveEncodersCount() echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := h.jobsUC.GetActiveEncodersCount(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]int{"active_encoders": count})
	}
}

func (h *jobsHandler) GetEncoderLastActivity() echo.HandlerFunc {
	return func(c echo.Context) error {
		encoderID := c.Param("encoder_id")
		if encoderID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Encoder id is required"})
		}
		lastActivity, err := h.jobsUC.GetEncoderLastActivity(c.Request().Context(), encoderID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"last_activity": lastActivity})
	}
}

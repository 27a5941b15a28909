package http

import (
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/labstack/echo/v4"
)

// MapAidRoutes exposes the fallback claim protocol to worker clients.
func MapAidRoutes(aidGroup *echo.Group, h jobs.Handler) {
	aidGroup.GET("/jobs", h.ListAvailableJobs())
	aidGroup.POST("/jobs/:job_id/claim", h.ClaimJob())
	aidGroup.POST("/jobs/:job_id/progress", h.ReportProgress())
	aidGroup.POST("/jobs/:job_id/complete", h.CompleteJob())
}

// MapJobRoutes exposes dashboard read endpoints.
func MapJobRoutes(jobsGroup *echo.Group, h jobs.Handler) {
	jobsGroup.GET("/active", h.GetActiveJobs())
	jobsGroup.GET("/available", h.GetAvailableJobs())
	jobsGroup.GET("/recent", h.GetRecentJobs())
	jobsGroup.GET("/completed", h.GetCompletedJobs())
	jobsGroup.GET("/completed-today", h.GetJobsCompletedToday())
	jobsGroup.GET("/last-completed", h.GetLastCompletedJobs())
	jobsGroup.GET("/encoders/count", h.GetActiveEncodersCount())
	jobsGroup.GET("/encoder/:encoder_id", h.GetJobsByEncoder())
	jobsGroup.GET("/encoder/:encoder_id/last-activity", h.GetEncoderLastActivity())
	jobsGroup.GET("/:job_id", h.GetJobByID())
}

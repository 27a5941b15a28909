package http

import (
	"net/http"
	"strconv"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type statsHandler struct {
	statsUC stats.UseCase
}

func NewStatsHandler(statsUC stats.UseCase) stats.Handler {
	return &statsHandler{
		statsUC: statsUC,
	}
}

func (h *statsHandler) GetDailyStatistics() echo.HandlerFunc {
	return func(c echo.Context) error {
		days := parseDays(c.QueryParam("days"))
		daily, err := h.statsUC.DailyStatistics(c.Request().Context(), days)
		if err != nil {
			if errors.Is(err, stats.ErrStatsUnavailable) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Statistics unavailable"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, daily)
	}
}

func (h *statsHandler) GetEncoderPerformance() echo.HandlerFunc {
	return func(c echo.Context) error {
		days := parseDays(c.QueryParam("days"))
		encoderID := c.QueryParam("encoder_id")
		performance, err := h.statsUC.EncoderPerformance(c.Request().Context(), days, encoderID)
		if err != nil {
			if errors.Is(err, stats.ErrStatsUnavailable) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Statistics unavailable"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, performance)
	}
}

func parseDays(raw string) int {
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return days
}

package http

import (
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats"
	"github.com/labstack/echo/v4"
)

func MapStatsRoutes(statsGroup *echo.Group, h stats.Handler) {
	statsGroup.GET("/daily", h.GetDailyStatistics())
	statsGroup.GET("/encoders", h.GetEncoderPerformance())
}

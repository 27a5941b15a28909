package middleware

import (
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MiddlewareManager struct {
	cfg     *config.Config
	origins []string
	logger  logger.Logger
}

// Middleware manager constructor
func NewMiddlewareManager(cfg *config.Config, origins []string, logger logger.Logger) *MiddlewareManager {
	return &MiddlewareManager{cfg: cfg, origins: origins, logger: logger}
}

// RequestIDMiddleware tags every request with a request id header.
func (mw *MiddlewareManager) RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)
		return next(c)
	}
}

// RequestLoggerMiddleware logs method, uri, status and latency per request.
func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		mw.logger.Infof("%s %s status: %d latency: %s requestID: %s",
			req.Method,
			req.RequestURI,
			res.Status,
			time.Since(start).String(),
			res.Header().Get(echo.HeaderXRequestID),
		)
		return err
	}
}

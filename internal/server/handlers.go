package server

import (
	"context"
	"net/http"
	"time"

	jobsHttp "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs/delivery/http"
	jobsRepository "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs/repository"
	jobsUsecase "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs/usecase"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/middleware"
	statsHttp "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats/delivery/http"
	statsRepository "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats/repository"
	statsUsecase "github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats/usecase"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/sweeper"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/notifier"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) (*sweeper.Sweeper, error) {
	jRepo := jobsRepository.NewJobsRepo(s.mongoConn, s.cfg)
	jRedisRepo := jobsRepository.NewJobsRedisRepo(s.redisClient)
	stRepo := statsRepository.NewStatsRepo(s.mongoConn, s.cfg)
	alerts := notifier.NewWebhookNotifier(s.cfg)

	jobsUC := jobsUsecase.NewJobsUseCase(s.cfg, jRepo, jRedisRepo, alerts, s.logger)
	statsUC := statsUsecase.NewStatsUseCase(s.cfg, stRepo, s.logger)

	jobsHandlers := jobsHttp.NewJobsHandler(jobsUC)
	statsHandlers := statsHttp.NewStatsHandler(statsUC)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)
	e.Use(mw.RequestIDMiddleware)
	e.Use(mw.RequestLoggerMiddleware)

	if s.mongoConn.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := jRepo.Migrate(ctx); err != nil {
			s.logger.Warnf("could not create job indexes: %v", err)
		}
	}

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	aidGroup := v1.Group("/aid")
	jobsGroup := v1.Group("/jobs")
	statsGroup := v1.Group("/stats")

	jobsHttp.MapAidRoutes(aidGroup, jobsHandlers)
	jobsHttp.MapJobRoutes(jobsGroup, jobsHandlers)
	statsHttp.MapStatsRoutes(statsGroup, statsHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		storeUp := s.mongoConn.Ping(c.Request().Context()) == nil
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "OK",
			"store_up": storeUp,
		})
	})

	return sweeper.NewSweeper(s.cfg, s.mongoConn, jobsUC, s.logger), nil
}

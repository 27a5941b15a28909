package usecase

import (
	"context"
	"fmt"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
	"github.com/pkg/errors"
)

const encoderWindowDays = 7

type statsUC struct {
	cfg       *config.Config
	statsRepo stats.Repository
	logger    logger.Logger
}

func NewStatsUseCase(cfg *config.Config, statsRepo stats.Repository, log logger.Logger) stats.UseCase {
	return &statsUC{
		cfg:       cfg,
		statsRepo: statsRepo,
		logger:    log,
	}
}

func (u *statsUC) DailyStatistics(ctx context.Context, windowDays int) ([]*models.DailyStat, error) {
	daily, err := u.statsRepo.GetDailyStatistics(ctx, windowDays)
	if err != nil {
		// Statistics failures must surface to the operator, never present
		// as a silently empty rollup.
		if errors.Is(err, stats.ErrStatsUnavailable) {
			u.logger.Warnf("DailyStatistics - store unavailable")
			return nil, err
		}
		u.logger.Errorf("DailyStatistics - GetDailyStatistics error: %v", err)
		return nil, fmt.Errorf("failed to compute daily statistics: %v", err)
	}
	return daily, nil
}

func (u *statsUC) EncoderPerformance(ctx context.Context, windowDays int, encoderID string) ([]*models.EncoderPerformance, error) {
	if windowDays <= 0 {
		windowDays = encoderWindowDays
	}
	performance, err := u.statsRepo.GetEncoderPerformance(ctx, windowDays, encoderID)
	if err != nil {
		if errors.Is(err, stats.ErrStatsUnavailable) {
			u.logger.Warnf("EncoderPerformance - store unavailable")
			return nil, err
		}
		u.logger.Errorf("EncoderPerformance - GetEncoderPerformance error: %v", err)
		return nil, fmt.Errorf("failed to compute encoder performance: %v", err)
	}
	return performance, nil
}

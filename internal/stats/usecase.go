package stats

import (
	"context"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
)

type UseCase interface {
	DailyStatistics(ctx context.Context, windowDays int) ([]*models.DailyStat, error)
	EncoderPerformance(ctx context.Context, windowDays int, encoderID string) ([]*models.EncoderPerformance, error)
}

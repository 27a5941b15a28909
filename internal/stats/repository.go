package stats

import (
	"context"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/pkg/errors"
)

// ErrStatsUnavailable is returned when rollups cannot be produced, either
// because the store is unreachable or the aggregation itself failed. Unlike
// job list reads, statistics never degrade to silent zeros: an operator must
// be able to tell "no activity" from "no data".
var ErrStatsUnavailable = errors.New("statistics unavailable")

type Repository interface {
	GetDailyStatistics(ctx context.Context, windowDays int) ([]*models.DailyStat, error)
	GetEncoderPerformance(ctx context.Context, windowDays int, encoderID string) ([]*models.EncoderPerformance, error)
}

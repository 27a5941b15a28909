package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/stats"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/db/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	defaultJobsCollection = "jobs"
	defaultWindowDays     = 30
	maxWindowDays         = 365
)

type statsRepo struct {
	conn *mongodb.Conn
	col  string
}

func NewStatsRepo(conn *mongodb.Conn, cfg *config.Config) stats.Repository {
	col := cfg.Mongo.JobsCollection
	if col == "" {
		col = defaultJobsCollection
	}
	return &statsRepo{
		conn: conn,
		col:  col,
	}
}

func (r *statsRepo) collection() *mongo.Collection {
	return r.conn.Collection(r.col)
}

func windowStart(windowDays int) time.Time {
	if windowDays <= 0 || windowDays > maxWindowDays {
		windowDays = defaultWindowDays
	}
	return time.Now().UTC().AddDate(0, 0, -windowDays)
}

func (r *statsRepo) GetDailyStatistics(ctx context.Context, windowDays int) ([]*models.DailyStat, error) {
	col := r.collection()
	if col == nil {
		return nil, stats.ErrStatsUnavailable
	}
	cursor, err := col.Aggregate(ctx, dailyStatisticsPipeline(windowStart(windowDays)))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily statistics: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*models.DailyStat
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode daily statistics: %w", err)
	}
	if results == nil {
		results = []*models.DailyStat{}
	}
	return results, nil
}

func (r *statsRepo) GetEncoderPerformance(ctx context.Context, windowDays int, encoderID string) ([]*models.EncoderPerformance, error) {
	col := r.collection()
	if col == nil {
		return nil, stats.ErrStatsUnavailable
	}
	cursor, err := col.Aggregate(ctx, encoderPerformancePipeline(windowStart(windowDays), encoderID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate encoder performance: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*models.EncoderPerformance
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode encoder performance: %w", err)
	}
	if results == nil {
		results = []*models.EncoderPerformance{}
	}
	return results, nil
}

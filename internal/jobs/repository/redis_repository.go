package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/go-redis/redis/v8"
)

type jobsRedisRepo struct {
	redisClient *redis.Client
}

func NewJobsRedisRepo(redisClient *redis.Client) jobs.RedisRepository {
	return &jobsRedisRepo{
		redisClient: redisClient,
	}
}

func (r *jobsRedisRepo) GetJobsCtx(ctx context.Context, key string) ([]*models.Job, error) {
	jobsBytes, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached jobs: %w", err)
	}
	var cached []*models.Job
	if err = json.Unmarshal(jobsBytes, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached jobs: %w", err)
	}
	return cached, nil
}

func (r *jobsRedisRepo) SetJobsCtx(ctx context.Context, key string, seconds int, jobList []*models.Job) error {
	jobsBytes, err := json.Marshal(jobList)
	if err != nil {
		return fmt.Errorf("failed to marshal jobs for cache: %w", err)
	}
	if err = r.redisClient.Set(ctx, key, jobsBytes, time.Second*time.Duration(seconds)).Err(); err != nil {
		return fmt.Errorf("failed to cache jobs: %w", err)
	}
	return nil
}

func (r *jobsRedisRepo) DeleteJobsCtx(ctx context.Context, key string) error {
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached jobs: %w", err)
	}
	return nil
}

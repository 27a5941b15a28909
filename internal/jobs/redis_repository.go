package jobs

import (
	"context"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
)

type RedisRepository interface {
	GetJobsCtx(ctx context.Context, key string) ([]*models.Job, error)
	SetJobsCtx(ctx context.Context, key string, seconds int, jobs []*models.Job) error
	DeleteJobsCtx(ctx context.Context, key string) error
}

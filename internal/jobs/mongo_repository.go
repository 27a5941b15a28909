package jobs

import (
	"context"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
)

type Repository interface {
	ListUnclaimed(ctx context.Context) ([]*models.Job, error)
	GetJobByID(ctx context.Context, jobID string) (*models.Job, error)
	GetRecentByStatus(ctx context.Context, status models.JobStatus, limit int64, sortField string) ([]*models.Job, error)
	GetRecentJobs(ctx context.Context, limit int64) ([]*models.Job, error)
	GetCompletedSince(ctx context.Context, since time.Time) ([]*models.Job, error)
	GetLastCompletedJobs(ctx context.Context, limit int64) ([]*models.Job, error)
	GetCompletedJobs(ctx context.Context, pq *utils.Pagination) ([]*models.Job, error)
	GetJobsByEncoder(ctx context.Context, encoderID string, pq *utils.Pagination) (*models.JobList, error)
	GetActiveEncodersCount(ctx context.Context) (int, error)
	GetEncoderLastActivity(ctx context.Context, encoderID string) (*time.Time, error)

	ClaimAtomic(ctx context.Context, jobID, encoderID string) (*models.Job, error)
	UpdateProgress(ctx context.Context, jobID, encoderID string, status models.JobStatus, progress models.JobProgress) error
	CompleteAtomic(ctx context.Context, jobID, encoderID string, result models.JobResult) error
	ReleaseTimedOut(ctx context.Context, staleBefore time.Duration) (int64, error)
	CountAidServiced(ctx context.Context) (int64, error)

	Migrate(ctx context.Context) error
}

package jobs

import (
	"context"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
)

type UseCase interface {
	// Aid fallback protocol.
	ListAvailableJobs(ctx context.Context) ([]*models.Job, error)
	ClaimJob(ctx context.Context, jobID string, input *models.ClaimInput) (*models.Job, error)
	ReportProgress(ctx context.Context, jobID string, input *models.ProgressInput) error
	CompleteJob(ctx context.Context, jobID string, input *models.CompleteInput) error
	ReleaseTimedOutJobs(ctx context.Context) (int64, error)

	// Dashboard reads.
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	GetActiveJobs(ctx context.Context) ([]*models.Job, error)
	GetAvailableJobs(ctx context.Context) ([]*models.Job, error)
	GetRecentJobs(ctx context.Context) ([]*models.Job, error)
	GetJobsCompletedToday(ctx context.Context) ([]*models.Job, error)
	GetLastCompletedJobs(ctx context.Context) ([]*models.Job, error)
	GetCompletedJobs(ctx context.Context, pq *utils.Pagination) ([]*models.Job, error)
	GetJobsByEncoder(ctx context.Context, encoderID string, pq *utils.Pagination) (*models.JobList, error)
	GetActiveEncodersCount(ctx context.Context) (int, error)
	GetEncoderLastActivity(ctx context.Context, encoderID string) (*time.Time, error)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/notifier"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
	"github.com/pkg/errors"
)

const (
	// defaultClaimTimeout is the staleness threshold for abandoned claims.
	// Reclamation is a periodic sweep, not per-job timers, so a crashed
	// claimant's job is back in the pool within one sweep interval after
	// the hour is up.
	defaultClaimTimeout = time.Hour

	activeJobsLimit    = 10
	recentJobsLimit    = 50
	lastCompletedLimit = 10

	recentJobsCacheKey = "jobs:recent"
	activeJobsCacheKey = "jobs:active"

	defaultCacheSeconds = 30
)

type jobsUC struct {
	cfg       *config.Config
	jobsRepo  jobs.Repository
	redisRepo jobs.RedisRepository
	notifier  notifier.Notifier
	logger    logger.Logger
}

func NewJobsUseCase(
	cfg *config.Config,
	jobsRepo jobs.Repository,
	redisRepo jobs.RedisRepository,
	alerts notifier.Notifier,
	log logger.Logger,
) jobs.UseCase {
	return &jobsUC{
		cfg:       cfg,
		jobsRepo:  jobsRepo,
		redisRepo: redisRepo,
		notifier:  alerts,
		logger:    log,
	}
}

func (u *jobsUC) ListAvailableJobs(ctx context.Context) ([]*models.Job, error) {
	available, err := u.jobsRepo.ListUnclaimed(ctx)
	if err != nil {
		u.logger.Errorf("ListAvailableJobs - ListUnclaimed error: %v", err)
		return nil, fmt.Errorf("failed to list available jobs: %v", err)
	}
	return available, nil
}

func (u *jobsUC) ClaimJob(ctx context.Context, jobID string, input *models.ClaimInput) (*models.Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("invalid job id: cannot be empty")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("ClaimJob - ValidateStruct error: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}

	claimed, err := u.jobsRepo.ClaimAtomic(ctx, jobID, input.EncoderID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotAvailable) {
			// Losing the race is a normal outcome, not a failure.
			u.logger.Infof("job %s not available for claiming by %s", jobID, input.EncoderID)
			return nil, err
		}
		u.logger.Errorf("ClaimJob - ClaimAtomic error: %v", err)
		return nil, err
	}
	u.logger.Infof("job %s claimed by %s via aid fallback", jobID, input.EncoderID)

	u.invalidateJobCaches(ctx)
	u.notifyFirstClaim(ctx)
	return claimed, nil
}

// invalidateJobCaches drops the dashboard list caches after any mutation so
// the next read reflects the new assignment state instead of a stale TTL.
func (u *jobsUC) invalidateJobCaches(ctx context.Context) {
	for _, key := range []string{recentJobsCacheKey, activeJobsCacheKey} {
		if err := u.redisRepo.DeleteJobsCtx(ctx, key); err != nil {
			u.logger.Warnf("could not invalidate %s cache: %v", key, err)
		}
	}
}

// notifyFirstClaim fires a one-time operator alert the first time the Aid
// path activates. The count check can only return true once, so the signal
// is consumed right here rather than exposed to callers.
func (u *jobsUC) notifyFirstClaim(ctx context.Context) {
	count, err := u.jobsRepo.CountAidServiced(ctx)
	if err != nil {
		u.logger.Warnf("could not check aid serviced count: %v", err)
		return
	}
	if count != 1 {
		return
	}
	msg := "Aid fallback path activated: first job claimed directly against the store. The primary dispatch gateway may be degraded."
	if err = u.notifier.Notify(ctx, msg); err != nil {
		u.logger.Errorf("failed to send first aid claim alert: %v", err)
	}
}

func (u *jobsUC) ReportProgress(ctx context.Context, jobID string, input *models.ProgressInput) error {
	if jobID == "" {
		return fmt.Errorf("invalid job id: cannot be empty")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("ReportProgress - ValidateStruct error: %v", err)
		return fmt.Errorf("invalid input: %v", err)
	}
	err := u.jobsRepo.UpdateProgress(ctx, jobID, input.EncoderID, input.Status, input.Progress)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return err
		}
		u.logger.Errorf("ReportProgress - UpdateProgress error: %v", err)
		return err
	}
	u.logger.Debugf("job %s progress updated: %.1f%%", jobID, input.Progress.Pct)
	u.invalidateJobCaches(ctx)
	return nil
}

func (u *jobsUC) CompleteJob(ctx context.Context, jobID string, input *models.CompleteInput) error {
	if jobID == "" {
		return fmt.Errorf("invalid job id: cannot be empty")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CompleteJob - ValidateStruct error: %v", err)
		return fmt.Errorf("invalid input: %v", err)
	}
	err := u.jobsRepo.CompleteAtomic(ctx, jobID, input.EncoderID, input.Result)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return err
		}
		u.logger.Errorf("CompleteJob - CompleteAtomic error: %v", err)
		return err
	}
	u.logger.Infof("job %s completed by %s via aid fallback", jobID, input.EncoderID)
	u.invalidateJobCaches(ctx)
	return nil
}

func (u *jobsUC) ReleaseTimedOutJobs(ctx context.Context) (int64, error) {
	released, err := u.jobsRepo.ReleaseTimedOut(ctx, u.claimTimeout())
	if err != nil {
		if errors.Is(err, jobs.ErrStoreUnavailable) {
			u.logger.Warnf("release sweep skipped: store unavailable")
			return 0, nil
		}
		u.logger.Errorf("ReleaseTimedOutJobs - ReleaseTimedOut error: %v", err)
		return 0, err
	}
	if released > 0 {
		u.logger.Infof("released %d timed-out aid jobs back to pending", released)
		u.invalidateJobCaches(ctx)
	}
	return released, nil
}

func (u *jobsUC) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("invalid job id: cannot be empty")
	}
	job, err := u.jobsRepo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrStoreUnavailable) {
			u.logger.Warnf("GetJob - store unavailable for job %s", jobID)
			return nil, jobs.ErrJobNotFound
		}
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, err
		}
		u.logger.Errorf("GetJob - GetJobByID error: %v", err)
		return nil, fmt.Errorf("failed to fetch job: %v", err)
	}
	return job, nil
}

func (u *jobsUC) GetActiveJobs(ctx context.Context) ([]*models.Job, error) {
	if cached, err := u.redisRepo.GetJobsCtx(ctx, activeJobsCacheKey); err == nil && cached != nil {
		return cached, nil
	}
	active, err := u.jobsRepo.GetRecentByStatus(ctx, models.JobStatusRunning, activeJobsLimit, "created_at")
	if err != nil {
		u.logger.Errorf("GetActiveJobs - GetRecentByStatus error: %v", err)
		return nil, fmt.Errorf("failed to fetch active jobs: %v", err)
	}
	if err = u.redisRepo.SetJobsCtx(ctx, activeJobsCacheKey, u.cacheSeconds(), active); err != nil {
		u.logger.Warnf("GetActiveJobs - cache write failed: %v", err)
	}
	return active, nil
}

func (u *jobsUC) GetAvailableJobs(ctx context.Context) ([]*models.Job, error) {
	available, err := u.jobsRepo.GetRecentByStatus(ctx, models.JobStatusUnassigned, activeJobsLimit, "created_at")
	if err != nil {
		u.logger.Errorf("GetAvailableJobs - GetRecentByStatus error: %v", err)
		return nil, fmt.Errorf("failed to fetch available jobs: %v", err)
	}
	return available, nil
}

func (u *jobsUC) GetRecentJobs(ctx context.Context) ([]*models.Job, error) {
	if cached, err := u.redisRepo.GetJobsCtx(ctx, recentJobsCacheKey); err == nil && cached != nil {
		return cached, nil
	}
	recent, err := u.jobsRepo.GetRecentJobs(ctx, recentJobsLimit)
	if err != nil {
		u.logger.Errorf("GetRecentJobs - GetRecentJobs error: %v", err)
		return nil, fmt.Errorf("failed to fetch recent jobs: %v", err)
	}
	if err = u.redisRepo.SetJobsCtx(ctx, recentJobsCacheKey, u.cacheSeconds(), recent); err != nil {
		u.logger.Warnf("GetRecentJobs - cache write failed: %v", err)
	}
	return recent, nil
}

func (u *jobsUC) GetJobsCompletedToday(ctx context.Context) ([]*models.Job, error) {
	startOfToday := time.Now().UTC().Truncate(24 * time.Hour)
	completed, err := u.jobsRepo.GetCompletedSince(ctx, startOfToday)
	if err != nil {
		u.logger.Errorf("GetJobsCompletedToday - GetCompletedSince error: %v", err)
		return nil, fmt.Errorf("failed to fetch jobs completed today: %v", err)
	}
	return completed, nil
}

// GetLastCompletedJobs backs the gateway-health heuristic: the age of the
// newest completion tells the operator whether anything is still finishing.
func (u *jobsUC) GetLastCompletedJobs(ctx context.Context) ([]*models.Job, error) {
	completed, err := u.jobsRepo.GetLastCompletedJobs(ctx, lastCompletedLimit)
	if err != nil {
		u.logger.Errorf("GetLastCompletedJobs - GetLastCompletedJobs error: %v", err)
		return nil, fmt.Errorf("failed to fetch last completed jobs: %v", err)
	}
	return completed, nil
}

func (u *jobsUC) GetCompletedJobs(ctx context.Context, pq *utils.Pagination) ([]*models.Job, error) {
	if pq == nil {
		pq = &utils.Pagination{Page: 1, Size: 20}
	}
	completed, err := u.jobsRepo.GetCompletedJobs(ctx, pq)
	if err != nil {
		u.logger.Errorf("GetCompletedJobs - GetCompletedJobs error: %v", err)
		return nil, fmt.Errorf("failed to fetch completed jobs: %v", err)
	}
	return completed, nil
}

func (u *jobsUC) GetJobsByEncoder(ctx context.Context, encoderID string, pq *utils.Pagination) (*models.JobList, error) {
	if encoderID == "" {
		return nil, fmt.Errorf("invalid encoder id: cannot be empty")
	}
	if pq == nil {
		pq = &utils.Pagination{Page: 1, Size: 20}
	}
	jobList, err := u.jobsRepo.GetJobsByEncoder(ctx, encoderID, pq)
	if err != nil {
		u.logger.Errorf("GetJobsByEncoder - GetJobsByEncoder error: %v", err)
		return nil, fmt.Errorf("failed to fetch jobs for encoder: %v", err)
	}
	return jobList, nil
}

func (u *jobsUC) GetActiveEncodersCount(ctx context.Context) (int, error) {
	count, err := u.jobsRepo.GetActiveEncodersCount(ctx)
	if err != nil {
		u.logger.Errorf("GetActiveEncodersCount error: %v", err)
		return 0, fmt.Errorf("failed to count active encoders: %v", err)
	}
	return count, nil
}

func (u *jobsUC) GetEncoderLastActivity(ctx context.Context, encoderID string) (*time.Time, error) {
	if encoderID == "" {
		return nil, fmt.Errorf("invalid encoder id: cannot be empty")
	}
	lastActivity, err := u.jobsRepo.GetEncoderLastActivity(ctx, encoderID)
	if err != nil {
		u.logger.Errorf("GetEncoderLastActivity error: %v", err)
		return nil, fmt.Errorf("failed to fetch encoder last activity: %v", err)
	}
	return lastActivity, nil
}

func (u *jobsUC) claimTimeout() time.Duration {
	if u.cfg.Aid.ClaimTimeoutMinutes > 0 {
		return time.Duration(u.cfg.Aid.ClaimTimeoutMinutes) * time.Minute
	}
	return defaultClaimTimeout
}

func (u *jobsUC) cacheSeconds() int {
	if u.cfg.Redis.CacheSeconds > 0 {
		return u.cfg.Redis.CacheSeconds
	}
	return defaultCacheSeconds
}

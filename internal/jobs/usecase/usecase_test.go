package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJobsRepo is a mutex-guarded in-memory stand-in for the Mongo
// repository. Claim, progress and complete preserve the store's
// conditional-update semantics so concurrency properties can be asserted
// without a live database.
type fakeJobsRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{jobs: make(map[string]*models.Job)}
}

func (f *fakeJobsRepo) put(j *models.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.jobs[j.ID] = &cp
}

func (f *fakeJobsRepo) get(id string) *models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		cp := *j
		return &cp
	}
	return nil
}

func (f *fakeJobsRepo) ListUnclaimed(ctx context.Context) ([]*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var unclaimed []*models.Job
	for _, j := range f.jobs {
		if j.Status == models.JobStatusPending && j.AssignedTo == "" {
			cp := *j
			unclaimed = append(unclaimed, &cp)
		}
	}
	for i := 0; i < len(unclaimed); i++ {
		for k := i + 1; k < len(unclaimed); k++ {
			if unclaimed[k].CreatedAt.Before(unclaimed[i].CreatedAt) {
				unclaimed[i], unclaimed[k] = unclaimed[k], unclaimed[i]
			}
		}
	}
	return unclaimed, nil
}

func (f *fakeJobsRepo) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	if j := f.get(jobID); j != nil {
		return j, nil
	}
	return nil, jobs.ErrJobNotFound
}

func (f *fakeJobsRepo) GetRecentByStatus(ctx context.Context, status models.JobStatus, limit int64, sortField string) ([]*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*models.Job
	for _, j := range f.jobs {
		if j.Status == status {
			cp := *j
			matched = append(matched, &cp)
		}
	}
	return matched, nil
}

func (f *fakeJobsRepo) GetRecentJobs(ctx context.Context, limit int64) ([]*models.Job, error) {
	return f.ListUnclaimed(ctx)
}

func (f *fakeJobsRepo) GetCompletedSince(ctx context.Context, since time.Time) ([]*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var completed []*models.Job
	for _, j := range f.jobs {
		if j.Status == models.JobStatusCompleted && j.CompletedAt != nil && !j.CompletedAt.Before(since) {
			cp := *j
			completed = append(completed, &cp)
		}
	}
	return completed, nil
}

func (f *fakeJobsRepo) GetCompletedJobs(ctx context.Context, pq *utils.Pagination) ([]*models.Job, error) {
	return f.GetCompletedSince(ctx, time.Time{})
}

func (f *fakeJobsRepo) GetLastCompletedJobs(ctx context.Context, limit int64) ([]*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var completed []*models.Job
	for _, j := range f.jobs {
		if j.Status == models.JobStatusCompleted && j.CompletedAt != nil {
			cp := *j
			completed = append(completed, &cp)
		}
	}
	for i := 0; i < len(completed); i++ {
		for k := i + 1; k < len(completed); k++ {
			if completed[k].CompletedAt.After(*completed[i].CompletedAt) {
				completed[i], completed[k] = completed[k], completed[i]
			}
		}
	}
	if int64(len(completed)) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

func (f *fakeJobsRepo) GetJobsByEncoder(ctx context.Context, encoderID string, pq *utils.Pagination) (*models.JobList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := &models.JobList{Jobs: []*models.Job{}}
	for _, j := range f.jobs {
		if j.AssignedTo == encoderID {
			cp := *j
			list.Jobs = append(list.Jobs, &cp)
		}
	}
	list.TotalCount = len(list.Jobs)
	return list, nil
}

func (f *fakeJobsRepo) GetActiveEncodersCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{})
	for _, j := range f.jobs {
		if j.AssignedTo != "" {
			unique[j.AssignedTo] = struct{}{}
		}
	}
	return len(unique), nil
}

func (f *fakeJobsRepo) GetEncoderLastActivity(ctx context.Context, encoderID string) (*time.Time, error) {
	return nil, nil
}

func (f *fakeJobsRepo) ClaimAtomic(ctx context.Context, jobID, encoderID string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[jobID]
	if !ok || j.Status != models.JobStatusPending || j.AssignedTo != "" {
		return nil, jobs.ErrJobNotAvailable
	}
	now := time.Now().UTC()
	j.Status = models.JobStatusAssigned
	j.AssignedTo = encoderID
	j.AssignedDate = &now
	j.ServicedByAid = true
	j.AidClaimedAt = &now
	cp := *j
	return &cp, nil
}

func (f *fakeJobsRepo) UpdateProgress(ctx context.Context, jobID, encoderID string, status models.JobStatus, progress models.JobProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[jobID]
	if !ok || j.AssignedTo != encoderID || !j.ServicedByAid {
		return jobs.ErrJobNotFound
	}
	now := time.Now().UTC()
	j.Status = status
	j.Progress = &progress
	j.LastPinged = &now
	return nil
}

func (f *fakeJobsRepo) CompleteAtomic(ctx context.Context, jobID, encoderID string, result models.JobResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[jobID]
	if !ok || j.AssignedTo != encoderID || !j.ServicedByAid {
		return jobs.ErrJobNotFound
	}
	now := time.Now().UTC()
	j.Status = models.JobStatusCompleted
	j.CompletedAt = &now
	j.Result = &result
	j.Progress = &models.JobProgress{DownloadPct: 100, Pct: 100}
	return nil
}

func (f *fakeJobsRepo) ReleaseTimedOut(ctx context.Context, staleBefore time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().UTC().Add(-staleBefore)
	var released int64
	for _, j := range f.jobs {
		if !j.ServicedByAid {
			continue
		}
		if j.Status != models.JobStatusAssigned && j.Status != models.JobStatusRunning {
			continue
		}
		stale := false
		if j.LastPinged != nil {
			stale = j.LastPinged.Before(cutoff)
		} else if j.AidClaimedAt != nil {
			stale = j.AidClaimedAt.Before(cutoff)
		}
		if !stale {
			continue
		}
		j.Status = models.JobStatusPending
		j.AssignedTo = ""
		j.AssignedDate = nil
		j.ServicedByAid = false
		j.AidClaimedAt = nil
		j.LastPinged = nil
		j.Progress = &models.JobProgress{}
		released++
	}
	return released, nil
}

func (f *fakeJobsRepo) CountAidServiced(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, j := range f.jobs {
		if j.ServicedByAid {
			count++
		}
	}
	return count, nil
}

func (f *fakeJobsRepo) Migrate(ctx context.Context) error { return nil }

type fakeRedisRepo struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeRedisRepo) GetJobsCtx(ctx context.Context, key string) ([]*models.Job, error) {
	return nil, nil
}

func (f *fakeRedisRepo) SetJobsCtx(ctx context.Context, key string, seconds int, jobList []*models.Job) error {
	return nil
}

func (f *fakeRedisRepo) DeleteJobsCtx(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeRedisRepo) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newTestUC(repo *fakeJobsRepo, alerts *fakeNotifier) jobs.UseCase {
	uc, _ := newTestUCWithCache(repo, alerts)
	return uc
}

func newTestUCWithCache(repo *fakeJobsRepo, alerts *fakeNotifier) (jobs.UseCase, *fakeRedisRepo) {
	cfg := &config.Config{}
	cfg.Logger.Level = "error"
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	cache := &fakeRedisRepo{}
	return NewJobsUseCase(cfg, repo, cache, alerts, log), cache
}

func pendingJob(id string, createdAt time.Time) *models.Job {
	return &models.Job{
		ID:        id,
		Status:    models.JobStatusPending,
		CreatedAt: createdAt,
		Metadata:  models.JobMetadata{VideoOwner: "owner", VideoPermlink: "permlink"},
		Input:     models.JobInput{URI: "ipfs://QmInput", Size: 2048},
	}
}

func TestClaimProgressCompleteScenario(t *testing.T) {
	repo := newFakeJobsRepo()
	alerts := &fakeNotifier{}
	uc := newTestUC(repo, alerts)
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC().Add(-time.Minute)))

	claimed, err := uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAssigned, claimed.Status)
	assert.Equal(t, "w1", claimed.AssignedTo)
	assert.True(t, claimed.ServicedByAid)

	err = uc.ReportProgress(ctx, "j1", &models.ProgressInput{
		EncoderID: "w1",
		Status:    models.JobStatusRunning,
		Progress:  models.JobProgress{DownloadPct: 100, Pct: 40},
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.get("j1").LastPinged)

	// Wrong worker: must be indistinguishable from a missing job and must
	// leave the job untouched.
	err = uc.CompleteJob(ctx, "j1", &models.CompleteInput{EncoderID: "w2"})
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
	assert.Equal(t, models.JobStatusRunning, repo.get("j1").Status)

	err = uc.CompleteJob(ctx, "j1", &models.CompleteInput{
		EncoderID: "w1",
		Result:    models.JobResult{CID: "X"},
	})
	require.NoError(t, err)

	done := repo.get("j1")
	assert.Equal(t, models.JobStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, 100.0, done.Progress.Pct)
	assert.Equal(t, "X", done.Result.CID)
}

func TestNoDoubleClaim(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC()))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, worker := range []string{"wA", "wB"} {
		wg.Add(1)
		go func(i int, worker string) {
			defer wg.Done()
			_, results[i] = uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: worker})
		}(i, worker)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
		} else if errors.Is(err, jobs.ErrJobNotAvailable) {
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestClaimAfterCompletionFails(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC()))

	_, err := uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "w1"})
	require.NoError(t, err)
	require.NoError(t, uc.CompleteJob(ctx, "j1", &models.CompleteInput{EncoderID: "w1"}))

	// Completion is terminal: the job is no longer pending, so a fresh
	// claim must lose.
	_, err = uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "w2"})
	assert.ErrorIs(t, err, jobs.ErrJobNotAvailable)
}

func TestOwnershipEnforcement(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC()))
	_, err := uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "wB"})
	require.NoError(t, err)

	err = uc.ReportProgress(ctx, "j1", &models.ProgressInput{
		EncoderID: "wA",
		Status:    models.JobStatusRunning,
		Progress:  models.JobProgress{Pct: 10},
	})
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	// A job outside the aid path rejects progress reports even from its
	// own assignee.
	direct := pendingJob("j2", time.Now().UTC())
	direct.Status = models.JobStatusAssigned
	direct.AssignedTo = "wA"
	repo.put(direct)
	err = uc.ReportProgress(ctx, "j2", &models.ProgressInput{
		EncoderID: "wA",
		Status:    models.JobStatusRunning,
		Progress:  models.JobProgress{Pct: 10},
	})
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestTimeoutSweep(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	stale := time.Now().UTC().Add(-61 * time.Minute)
	fresh := time.Now().UTC().Add(-59 * time.Minute)

	staleJob := pendingJob("stale", stale)
	staleJob.Status = models.JobStatusAssigned
	staleJob.AssignedTo = "w1"
	staleJob.ServicedByAid = true
	staleJob.AidClaimedAt = &stale
	repo.put(staleJob)

	freshJob := pendingJob("fresh", fresh)
	freshJob.Status = models.JobStatusAssigned
	freshJob.AssignedTo = "w2"
	freshJob.ServicedByAid = true
	freshJob.AidClaimedAt = &fresh
	repo.put(freshJob)

	released, err := uc.ReleaseTimedOutJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	got := repo.get("stale")
	assert.Equal(t, models.JobStatusPending, got.Status)
	assert.Empty(t, got.AssignedTo)
	assert.Nil(t, got.AssignedDate)
	assert.False(t, got.ServicedByAid)
	assert.Nil(t, got.AidClaimedAt)

	kept := repo.get("fresh")
	assert.Equal(t, models.JobStatusAssigned, kept.Status)
	assert.Equal(t, "w2", kept.AssignedTo)
}

func TestListAvailableJobsFIFO(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	base := time.Now().UTC()
	repo.put(pendingJob("t3", base.Add(-1*time.Minute)))
	repo.put(pendingJob("t1", base.Add(-3*time.Minute)))
	repo.put(pendingJob("t2", base.Add(-2*time.Minute)))

	available, err := uc.ListAvailableJobs(ctx)
	require.NoError(t, err)
	require.Len(t, available, 3)
	assert.Equal(t, "t1", available[0].ID)
	assert.Equal(t, "t2", available[1].ID)
	assert.Equal(t, "t3", available[2].ID)
}

func TestFirstClaimNotification(t *testing.T) {
	repo := newFakeJobsRepo()
	alerts := &fakeNotifier{}
	uc := newTestUC(repo, alerts)
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC()))
	repo.put(pendingJob("j2", time.Now().UTC()))

	_, err := uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, 1, alerts.count())

	// Only the very first aid claim alerts the operator.
	_, err = uc.ClaimJob(ctx, "j2", &models.ClaimInput{EncoderID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, 1, alerts.count())
}

func TestGetLastCompletedJobs(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"c1", "c2", "c3"} {
		done := base.Add(-time.Duration(i) * time.Hour)
		j := pendingJob(id, base.Add(-24*time.Hour))
		j.Status = models.JobStatusCompleted
		j.CompletedAt = &done
		repo.put(j)
	}
	// A terminal job without a completion timestamp says nothing about
	// gateway liveness and must not appear.
	noStamp := pendingJob("c4", base.Add(-24*time.Hour))
	noStamp.Status = models.JobStatusCompleted
	repo.put(noStamp)
	repo.put(pendingJob("p1", base))

	completed, err := uc.GetLastCompletedJobs(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 3)
	assert.Equal(t, "c1", completed[0].ID)
	assert.Equal(t, "c2", completed[1].ID)
	assert.Equal(t, "c3", completed[2].ID)
}

func TestMutationsInvalidateListCaches(t *testing.T) {
	repo := newFakeJobsRepo()
	uc, cache := newTestUCWithCache(repo, &fakeNotifier{})
	ctx := context.Background()

	repo.put(pendingJob("j1", time.Now().UTC()))

	_, err := uc.ClaimJob(ctx, "j1", &models.ClaimInput{EncoderID: "w1"})
	require.NoError(t, err)
	assert.Contains(t, cache.deletedKeys(), recentJobsCacheKey)
	assert.Contains(t, cache.deletedKeys(), activeJobsCacheKey)

	before := len(cache.deletedKeys())
	err = uc.CompleteJob(ctx, "j1", &models.CompleteInput{EncoderID: "w1"})
	require.NoError(t, err)
	assert.Greater(t, len(cache.deletedKeys()), before)

	// A sweep that releases nothing leaves the caches alone.
	before = len(cache.deletedKeys())
	released, err := uc.ReleaseTimedOutJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
	assert.Len(t, cache.deletedKeys(), before)
}

func TestClaimValidation(t *testing.T) {
	repo := newFakeJobsRepo()
	uc := newTestUC(repo, &fakeNotifier{})
	ctx := context.Background()

	_, err := uc.ClaimJob(ctx, "", &models.ClaimInput{EncoderID: "w1"})
	assert.Error(t, err)

	_, err = uc.ClaimJob(ctx, "j1", &models.ClaimInput{})
	assert.Error(t, err)
}

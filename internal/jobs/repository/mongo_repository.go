package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/jobs"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/db/mongodb"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultJobsCollection = "jobs"
	encoderSampleLimit    = 10
)

// terminalSuccess matches both spellings still present in historical data.
// Writes only ever emit the canonical "completed".
var terminalSuccess = bson.A{"completed", "complete"}

type jobsRepo struct {
	conn *mongodb.Conn
	col  string
}

func NewJobsRepo(conn *mongodb.Conn, cfg *config.Config) jobs.Repository {
	col := cfg.Mongo.JobsCollection
	if col == "" {
		col = defaultJobsCollection
	}
	return &jobsRepo{
		conn: conn,
		col:  col,
	}
}

// idFilter matches a job on either identifier convention: the externally
// assigned id or the store-generated _id.
func idFilter(jobID string) bson.M {
	or := bson.A{bson.M{"id": jobID}}
	if oid, err := bson.ObjectIDFromHex(jobID); err == nil {
		or = append(or, bson.M{"_id": oid})
	}
	return bson.M{"$or": or}
}

func (r *jobsRepo) collection() *mongo.Collection {
	return r.conn.Collection(r.col)
}

func (r *jobsRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.Job, error) {
	col := r.collection()
	if col == nil {
		// Degraded store: list reads present as empty, never as an error.
		return []*models.Job{}, nil
	}
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []jobModel
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	result := make([]*models.Job, 0, len(docs))
	for i := range docs {
		result = append(result, fromJobModel(&docs[i]))
	}
	return result, nil
}

func (r *jobsRepo) ListUnclaimed(ctx context.Context) ([]*models.Job, error) {
	filter := bson.M{
		"status":      string(models.JobStatusPending),
		"assigned_to": bson.M{"$exists": false},
	}
	// Oldest first so no pending job starves under steady claim pressure.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *jobsRepo) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	col := r.collection()
	if col == nil {
		return nil, jobs.ErrStoreUnavailable
	}
	var m jobModel
	if err := col.FindOne(ctx, idFilter(jobID)).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}
	return fromJobModel(&m), nil
}

func (r *jobsRepo) GetRecentByStatus(ctx context.Context, status models.JobStatus, limit int64, sortField string) ([]*models.Job, error) {
	filter := bson.M{"status": string(status)}
	if status.IsTerminalSuccess() {
		filter["status"] = bson.M{"$in": terminalSuccess}
	}
	if sortField == "" {
		sortField = "created_at"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *jobsRepo) GetRecentJobs(ctx context.Context, limit int64) ([]*models.Job, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *jobsRepo) GetCompletedSince(ctx context.Context, since time.Time) ([]*models.Job, error) {
	filter := bson.M{
		"status":       bson.M{"$in": terminalSuccess},
		"completed_at": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

// GetLastCompletedJobs returns the newest terminal successes that carry a
// completion timestamp. The recency of the newest one is how the dashboard
// judges whether the primary gateway is still dispatching.
func (r *jobsRepo) GetLastCompletedJobs(ctx context.Context, limit int64) ([]*models.Job, error) {
	filter := bson.M{
		"status":       bson.M{"$in": terminalSuccess},
		"completed_at": bson.M{"$exists": true},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *jobsRepo) GetCompletedJobs(ctx context.Context, pq *utils.Pagination) ([]*models.Job, error) {
	filter := bson.M{"status": bson.M{"$in": terminalSuccess}}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetSkip(int64(pq.GetOffset())).
		SetLimit(int64(pq.GetLimit()))
	return r.find(ctx, filter, opts)
}

func (r *jobsRepo) GetJobsByEncoder(ctx context.Context, encoderID string, pq *utils.Pagination) (*models.JobList, error) {
	col := r.collection()
	if col == nil {
		return &models.JobList{Jobs: []*models.Job{}}, nil
	}
	filter := bson.M{
		"assigned_to": encoderID,
		"status":      bson.M{"$in": bson.A{"completed", "complete", "running", "assigned"}},
	}
	totalCount, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by encoder: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(pq.GetOffset())).
		SetLimit(int64(pq.GetLimit()))
	jobList, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &models.JobList{
		Jobs:       jobList,
		TotalCount: int(totalCount),
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), int(totalCount), pq.GetSize()),
	}, nil
}

func (r *jobsRepo) GetActiveEncodersCount(ctx context.Context) (int, error) {
	filter := bson.M{"assigned_to": bson.M{"$exists": true, "$ne": nil}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(encoderSampleLimit)
	recent, err := r.find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}
	unique := make(map[string]struct{}, len(recent))
	for _, j := range recent {
		if j.AssignedTo != "" {
			unique[j.AssignedTo] = struct{}{}
		}
	}
	return len(unique), nil
}

func (r *jobsRepo) GetEncoderLastActivity(ctx context.Context, encoderID string) (*time.Time, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "completed_at", Value: -1},
			{Key: "last_pinged", Value: -1},
			{Key: "assigned_date", Value: -1},
		}).
		SetLimit(1)
	recent, err := r.find(ctx, bson.M{"assigned_to": encoderID}, opts)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}
	j := recent[0]
	switch {
	case j.CompletedAt != nil:
		return j.CompletedAt, nil
	case j.LastPinged != nil:
		return j.LastPinged, nil
	case j.AssignedDate != nil:
		return j.AssignedDate, nil
	default:
		t := j.CreatedAt
		return &t, nil
	}
}

// ClaimAtomic transitions a pending, unassigned job to the claimant in one
// conditional update. A read-then-write pair would reintroduce the
// double-assignment race; FindOneAndUpdate is the only safe shape here.
func (r *jobsRepo) ClaimAtomic(ctx context.Context, jobID, encoderID string) (*models.Job, error) {
	col := r.collection()
	if col == nil {
		return nil, jobs.ErrStoreUnavailable
	}
	now := time.Now().UTC()
	filter := bson.M{"$and": bson.A{
		idFilter(jobID),
		bson.M{
			"status":      string(models.JobStatusPending),
			"assigned_to": bson.M{"$exists": false},
		},
	}}
	update := bson.M{"$set": bson.M{
		"status":          string(models.JobStatusAssigned),
		"assigned_to":     encoderID,
		"assigned_date":   now,
		"serviced_by_aid": true,
		"aid_claimed_at":  now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m jobModel
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			// Already claimed by a concurrent caller, or no such job.
			return nil, jobs.ErrJobNotAvailable
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return fromJobModel(&m), nil
}

func (r *jobsRepo) UpdateProgress(ctx context.Context, jobID, encoderID string, status models.JobStatus, progress models.JobProgress) error {
	col := r.collection()
	if col == nil {
		return jobs.ErrStoreUnavailable
	}
	filter := bson.M{"$and": bson.A{
		idFilter(jobID),
		bson.M{
			"assigned_to":     encoderID,
			"serviced_by_aid": true,
		},
	}}
	update := bson.M{"$set": bson.M{
		"status":      string(status),
		"progress":    progress,
		"last_pinged": time.Now().UTC(),
	}}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	if res.MatchedCount == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (r *jobsRepo) CompleteAtomic(ctx context.Context, jobID, encoderID string, result models.JobResult) error {
	col := r.collection()
	if col == nil {
		return jobs.ErrStoreUnavailable
	}
	filter := bson.M{"$and": bson.A{
		idFilter(jobID),
		bson.M{
			"assigned_to":     encoderID,
			"serviced_by_aid": true,
		},
	}}
	update := bson.M{"$set": bson.M{
		"status":       string(models.JobStatusCompleted),
		"completed_at": time.Now().UTC(),
		"result":       result,
		"progress":     models.JobProgress{DownloadPct: 100, Pct: 100},
	}}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if res.MatchedCount == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

// ReleaseTimedOut sweeps Aid-claimed jobs whose holder went quiet and puts
// them back in the pending pool with every assignment field cleared.
func (r *jobsRepo) ReleaseTimedOut(ctx context.Context, staleBefore time.Duration) (int64, error) {
	col := r.collection()
	if col == nil {
		return 0, jobs.ErrStoreUnavailable
	}
	cutoff := time.Now().UTC().Add(-staleBefore)
	filter := bson.M{
		"serviced_by_aid": true,
		"status":          bson.M{"$in": bson.A{"assigned", "running"}},
		"$or": bson.A{
			bson.M{"last_pinged": bson.M{"$lt": cutoff}},
			bson.M{
				"last_pinged":    bson.M{"$exists": false},
				"aid_claimed_at": bson.M{"$lt": cutoff},
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":   string(models.JobStatusPending),
			"progress": models.JobProgress{},
		},
		"$unset": bson.M{
			"assigned_to":     "",
			"assigned_date":   "",
			"serviced_by_aid": "",
			"aid_claimed_at":  "",
			"last_pinged":     "",
		},
	}
	res, err := col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to release timed-out jobs: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *jobsRepo) CountAidServiced(ctx context.Context) (int64, error) {
	col := r.collection()
	if col == nil {
		return 0, jobs.ErrStoreUnavailable
	}
	count, err := col.CountDocuments(ctx, bson.M{"serviced_by_aid": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count aid serviced jobs: %w", err)
	}
	return count, nil
}

// Migrate creates the indexes the claim, sweep and dashboard queries rely on.
func (r *jobsRepo) Migrate(ctx context.Context) error {
	col := r.collection()
	if col == nil {
		return jobs.ErrStoreUnavailable
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{
			{Key: "serviced_by_aid", Value: 1},
			{Key: "status", Value: 1},
			{Key: "last_pinged", Value: 1},
		}},
		{Keys: bson.D{{Key: "completed_at", Value: -1}}},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

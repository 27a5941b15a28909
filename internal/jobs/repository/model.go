package repository

import (
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// jobModel mirrors a raw document in the jobs collection. Historical
// documents are loose: some only carry a store-generated _id, some an
// external id, progress is either a bare number or a {download_pct, pct}
// document, and metadata/input may be absent entirely. Everything is
// straightened out in fromJobModel so the rest of the service only ever
// sees models.Job.
type jobModel struct {
	OID            bson.ObjectID       `bson:"_id,omitempty"`
	ID             string              `bson:"id,omitempty"`
	Status         string              `bson:"status"`
	CreatedAt      time.Time           `bson:"created_at"`
	AssignedTo     string              `bson:"assigned_to,omitempty"`
	AssignedDate   *time.Time          `bson:"assigned_date,omitempty"`
	LastPinged     *time.Time          `bson:"last_pinged,omitempty"`
	CompletedAt    *time.Time          `bson:"completed_at,omitempty"`
	Progress       bson.RawValue       `bson:"progress,omitempty"`
	Result         *models.JobResult   `bson:"result,omitempty"`
	Metadata       *models.JobMetadata `bson:"metadata,omitempty"`
	Input          *models.JobInput    `bson:"input,omitempty"`
	CurrentQuality string              `bson:"current_quality,omitempty"`
	EncodingTime   float64             `bson:"encoding_time,omitempty"`
	ServicedByAid  bool                `bson:"serviced_by_aid,omitempty"`
	AidClaimedAt   *time.Time          `bson:"aid_claimed_at,omitempty"`
}

// fromJobModel is the single normalization point between raw documents and
// the records consumers see. The exposed id is always a plain string, the
// legacy "complete" spelling is rewritten to the canonical "completed", and
// missing optional fields get explicit defaults here instead of in every
// consumer.
func fromJobModel(m *jobModel) *models.Job {
	j := &models.Job{
		ID:             m.ID,
		Status:         normalizeStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		AssignedTo:     m.AssignedTo,
		AssignedDate:   m.AssignedDate,
		LastPinged:     m.LastPinged,
		CompletedAt:    m.CompletedAt,
		Progress:       normalizeProgress(m.Progress),
		Result:         m.Result,
		CurrentQuality: m.CurrentQuality,
		EncodingTime:   m.EncodingTime,
		ServicedByAid:  m.ServicedByAid,
		AidClaimedAt:   m.AidClaimedAt,
	}
	if j.ID == "" && !m.OID.IsZero() {
		j.ID = m.OID.Hex()
	}
	if m.Metadata != nil {
		j.Metadata = *m.Metadata
	}
	if m.Input != nil {
		j.Input = *m.Input
	}
	return j
}

func normalizeStatus(s string) models.JobStatus {
	switch s {
	case "complete":
		return models.JobStatusCompleted
	case "":
		return models.JobStatusPending
	default:
		return models.JobStatus(s)
	}
}

// normalizeProgress tolerates the two historical progress shapes: a bare
// percentage written by old gateway code and the {download_pct, pct}
// document written by the Aid path.
func normalizeProgress(rv bson.RawValue) *models.JobProgress {
	switch rv.Type {
	case bson.TypeEmbeddedDocument:
		var p models.JobProgress
		if err := bson.Unmarshal(rv.Value, &p); err != nil {
			return nil
		}
		return &p
	case bson.TypeDouble:
		pct := rv.Double()
		return &models.JobProgress{DownloadPct: pct, Pct: pct}
	case bson.TypeInt32:
		pct := float64(rv.Int32())
		return &models.JobProgress{DownloadPct: pct, Pct: pct}
	case bson.TypeInt64:
		pct := float64(rv.Int64())
		return &models.JobProgress{DownloadPct: pct, Pct: pct}
	default:
		return nil
	}
}

package models

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusUnassigned JobStatus = "unassigned"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusRunning    JobStatus = "running"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminalSuccess reports whether s is a terminal-success status.
// Historical documents carry both "complete" and "completed"; "completed"
// is canonical and the read boundary rewrites the legacy spelling, but
// raw values may still reach comparisons through untrusted payloads.
func (s JobStatus) IsTerminalSuccess() bool {
	return s == JobStatusCompleted || s == "complete"
}

type JobMetadata struct {
	VideoOwner    string `json:"video_owner" bson:"video_owner"`
	VideoPermlink string `json:"video_permlink" bson:"video_permlink"`
}

type JobInput struct {
	URI  string `json:"uri" bson:"uri"`
	Size int64  `json:"size" bson:"size"`
}

type JobProgress struct {
	DownloadPct float64 `json:"download_pct" bson:"download_pct" validate:"min=0,max=100"`
	Pct         float64 `json:"pct" bson:"pct" validate:"min=0,max=100"`
}

type JobResult struct {
	CID        string `json:"cid,omitempty" bson:"cid,omitempty"`
	OutputSize int64  `json:"output_size,omitempty" bson:"output_size,omitempty"`
	Message    string `json:"message,omitempty" bson:"message,omitempty"`
}

// Job is the normalized view of one encoding task. The store is schemaless
// and historical documents miss fields; every read goes through the
// repository's normalization so consumers never see raw documents.
type Job struct {
	ID             string       `json:"id"`
	Status         JobStatus    `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	AssignedTo     string       `json:"assigned_to,omitempty"`
	AssignedDate   *time.Time   `json:"assigned_date,omitempty"`
	LastPinged     *time.Time   `json:"last_pinged,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	Progress       *JobProgress `json:"progress,omitempty"`
	Result         *JobResult   `json:"result,omitempty"`
	Metadata       JobMetadata  `json:"metadata"`
	Input          JobInput     `json:"input"`
	CurrentQuality string       `json:"current_quality,omitempty"`
	EncodingTime   float64      `json:"encoding_time,omitempty"`
	ServicedByAid  bool         `json:"serviced_by_aid,omitempty"`
	AidClaimedAt   *time.Time   `json:"aid_claimed_at,omitempty"`
}

type JobList struct {
	Jobs       []*Job `json:"jobs"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	HasMore    bool   `json:"has_more"`
}

type ClaimInput struct {
	EncoderID string `json:"encoder_id" validate:"required"`
}

type ProgressInput struct {
	EncoderID string      `json:"encoder_id" validate:"required"`
	Status    JobStatus   `json:"status" validate:"required,oneof=assigned running failed"`
	Progress  JobProgress `json:"progress"`
}

type CompleteInput struct {
	EncoderID string    `json:"encoder_id" validate:"required"`
	Result    JobResult `json:"result"`
}

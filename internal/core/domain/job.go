package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a background ingest job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IngestJob carries one ingestion batch through the background worker.
// A batch is never retried: a failed batch is rolled back and the caller
// decides whether to resubmit.
type IngestJob struct {
	ID          string        `json:"id"`
	Documents   []RawDocument `json:"-"`
	Status      JobStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	EnqueuedAt  time.Time     `json:"enqueued_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewIngestJob creates a pending job for one document batch.
func NewIngestJob(docs []RawDocument) *IngestJob {
	return &IngestJob{
		ID:         uuid.NewString(),
		Documents:  docs,
		Status:     JobStatusPending,
		EnqueuedAt: time.Now(),
	}
}

// MarkProcessing updates the job to processing state
func (j *IngestJob) MarkProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
}

// MarkCompleted updates the job to completed state
func (j *IngestJob) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.Error = ""
}

// MarkFailed updates the job to failed state
func (j *IngestJob) MarkFailed(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

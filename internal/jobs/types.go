package jobs

import (
	"context"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ImportStatementJob asks the worker to parse a bulk statement and feed
// its transactions into the ledger. The statement text is either carried
// inline or fetched from GCSURI.
type ImportStatementJob struct {
	JobID   string `json:"job_id"`
	Account string `json:"account"`

	// Exactly one of Text and GCSURI is set.
	Text   string `json:"text,omitempty"`
	GCSURI string `json:"gcs_uri,omitempty"`

	// ChatID, when non-zero, receives a result notification.
	ChatID int64 `json:"chat_id,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	// Filled on completion.
	Imported int `json:"imported"`
	Rejected int `json:"rejected"`
}

// Publisher publishes import jobs to a queue. The abstraction leaves
// room for queue backends beyond the in-memory one.
type Publisher interface {
	PublishImport(ctx context.Context, job *ImportStatementJob) error
	Close() error
}

// Consumer consumes import jobs from a queue.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// Handler processes one job. A returned error marks the job failed.
type Handler func(ctx context.Context, job *ImportStatementJob) error

// Store tracks job state so callers can poll for results.
type Store interface {
	SaveJob(ctx context.Context, job *ImportStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ImportStatementJob, error)
}

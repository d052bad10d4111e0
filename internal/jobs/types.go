package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExportEntry sends an approved accounting entry to external sinks.
	JobTypeExportEntry JobType = "export_entry"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is scheduled again.
	JobStatusRetrying JobStatus = "retrying"
)

// ExportEntryJob carries an approved entry to the export sinks.
type ExportEntryJob struct {
	JobID string `json:"job_id"`

	// EntryID is the ID of the approved accounting entry.
	EntryID string `json:"entry_id"`

	// Entry is the entry as it was when approved.
	Entry domain.AccountingEntry `json:"entry"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the last attempt failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ExportEntryJob) GetID() string {
	return j.JobID
}

func (j *ExportEntryJob) GetType() JobType {
	return JobTypeExportEntry
}

func (j *ExportEntryJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishExportEntry publishes an entry export job.
	PublishExportEntry(ctx context.Context, job *ExportEntryJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and may be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExportEntryJob) error
	GetJob(ctx context.Context, jobID string) (*ExportEntryJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExportEntryJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	EntryID string
	Status  JobStatus
	Limit   int
	Offset  int
}

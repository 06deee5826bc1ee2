package types

import "time"

// JobStatus is the lifecycle state of one processing job. Every job reaches
// a terminal state: completed (possibly with zero clips) or failed.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobRecord is the externally visible state of a job.
type JobRecord struct {
	ID        string    `json:"job_id"`
	Input     string    `json:"input"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Manifest  *Manifest `json:"manifest,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

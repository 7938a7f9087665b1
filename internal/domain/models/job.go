package models

import "time"

// JobStatus is the lifecycle state of an export job.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// ExportJob is a point-in-time snapshot of one export job's state. The
// running job is the only writer; everyone else sees copies.
type ExportJob struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	Total      int       `json:"total"`
	Done       int       `json:"done"`
	Errors     int       `json:"errors"`
	Current    string    `json:"current,omitempty"`
	Years      int       `json:"years"`
	Filename   string    `json:"filename,omitempty"`
	SavedTo    string    `json:"saved_to,omitempty"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Percent derives job progress; 0 when nothing was scheduled.
func (j *ExportJob) Percent() float64 {
	if j.Total == 0 {
		return 0
	}
	return float64(j.Done) / float64(j.Total) * 100.0
}

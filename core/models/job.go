package models

import "time"

// Survey holds the four free-text answers supplied at submission time.
// Immutable once the job exists.
type Survey struct {
	Name      string `json:"name"`
	JobTitle  string `json:"job_title"`
	Strengths string `json:"strengths"`
	Hobbies   string `json:"hobbies"`
}

// AnalysisJob tracks one analysis request's lifecycle and outcome.
// There is exactly one job per session; re-submission replaces it.
type AnalysisJob struct {
	SessionID string    `json:"session_id"`
	Survey    Survey    `json:"survey"`
	Status    JobStatus `json:"status"`
	Verdict   *Verdict  `json:"verdict,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobStatus represents the current status of an analysis job
type JobStatus string

const (
	JobStatusAnalyzing JobStatus = "analyzing"
	JobStatusCompleted JobStatus = "completed"
	JobStatusError     JobStatus = "error"
)

// Terminal reports whether the status can no longer change without a
// fresh submission.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

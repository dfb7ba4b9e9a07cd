package types

import "time"

// JobStatus represents the current status of a download job
type JobStatus string

const (
	JobStatusStarting    JobStatus = "starting"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusFinished    JobStatus = "finished"
	JobStatusError       JobStatus = "error"
)

// Terminal reports whether a job in this status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusError
}

// DownloadJob represents one background transfer tracked by the registry.
// Only the goroutine driving the transfer mutates it; everyone else reads
// value snapshots.
type DownloadJob struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	FormatID    string     `json:"formatId"`
	Status      JobStatus  `json:"status"`
	Percent     float64    `json:"percent"` // 0-100, never regresses
	Speed       string     `json:"speed,omitempty"`
	ETA         string     `json:"eta,omitempty"`
	Filename    string     `json:"filename,omitempty"` // set once finished
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

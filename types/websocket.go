package types

import "time"

// ProgressMessage represents a WebSocket progress update message
type ProgressMessage struct {
	JobID     string    `json:"jobId"`
	Type      string    `json:"type"` // "status", "progress", "complete", "error"
	Status    JobStatus `json:"status"`
	Percent   float64   `json:"percent"` // 0-100
	Speed     string    `json:"speed,omitempty"`
	ETA       string    `json:"eta,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	Message   string    `json:"message,omitempty"` // status or error messages
	Timestamp time.Time `json:"timestamp"`
}

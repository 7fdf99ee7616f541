// Package types contains common types used across the application
package types

import "time"

// UploadState is the lifecycle stage of an upload.
type UploadState string

// Upload states in lifecycle order.
const (
	StateQueued     UploadState = "queued"
	StateProcessing UploadState = "processing"
	StateCompleted  UploadState = "completed"
	StateFailed     UploadState = "failed"
)

// Terminal reports whether no further transitions happen from s.
func (s UploadState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// UploadStatus is the externally visible record of one upload.
type UploadStatus struct {
	UploadID    string         `json:"upload_id"`
	Filename    string         `json:"filename,omitempty"`
	State       UploadState    `json:"state"`
	Rows        int            `json:"rows"`
	Posts       int            `json:"posts"`
	Rejected    map[string]int `json:"rejected,omitempty"`
	Error       string         `json:"error,omitempty"`
	ReceivedAt  time.Time      `json:"received_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

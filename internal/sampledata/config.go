// Package sampledata generates synthetic post exports and drives them
// through a running service to check its reports end to end.
package sampledata

import (
	"time"

	"github.com/okian/postpulse/internal/domain/types"
)

// Config holds configuration for a sample run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumPosts     int           // Rows in the generated export
	Submissions  int           // Concurrent submissions of the same upload
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between status polls
	WaitTimeout  time.Duration // Upper bound on waiting for processing
	OutputFile   string        // Where to keep the generated CSV; empty skips it
	Verbose      bool          // Log every submission
}

// AckResponse is the body of POST /uploads.
type AckResponse struct {
	UploadID  string `json:"upload_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// UploadStatus is the body of GET /uploads/{id}.
type UploadStatus = types.UploadStatus

// Stats holds run statistics.
type Stats struct {
	PostsGenerated      int
	UploadsSubmitted    int
	UploadsAccepted     int
	UploadsDuplicate    int
	UploadsFailed       int
	PostsAccepted       int
	ReportsVerified     int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
	ProcessingTime      time.Duration
	FinalState          types.UploadState
	RejectedRowsByCause map[string]int
}

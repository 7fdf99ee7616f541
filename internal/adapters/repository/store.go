// Package repository keeps upload status records and the latest analysis snapshot.
package repository

import (
	"context"
	"time"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/internal/domain/types"
)

// Snapshot is the analysed state of one completed upload. It is never
// modified after it has been published.
type Snapshot struct {
	UploadID    string
	Posts       []post.Post
	Reports     report.Set
	CompletedAt time.Time
}

// Store provides read/write access to upload state.
type Store interface {
	// Track registers a new upload status. Tracking an ID twice replaces the record.
	Track(ctx context.Context, st types.UploadStatus) error

	// Update applies fn to the status of id and returns the result.
	// Returns ErrNotFound if id is not tracked.
	Update(ctx context.Context, id string, fn func(*types.UploadStatus)) (types.UploadStatus, error)

	// Status returns the status record for id.
	// Returns ErrNotFound if id is unknown or was evicted.
	Status(ctx context.Context, id string) (types.UploadStatus, error)

	// Publish replaces the latest snapshot.
	Publish(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recently published snapshot.
	// Returns ErrNoSnapshot before the first publish.
	Latest(ctx context.Context) (*Snapshot, error)

	// Count returns the number of tracked uploads.
	Count(ctx context.Context) int
}

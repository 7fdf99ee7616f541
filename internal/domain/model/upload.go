// Package model contains domain models passed between layers.
package model

import "time"

// Upload is one submitted export waiting to be processed.
type Upload struct {
	ID         string    // client idempotency key or generated uuid
	Filename   string    // as given by the client, may be empty
	Kind       string    // container format, see ingest.Kind
	Body       []byte    // raw file bytes
	ReceivedAt time.Time // when the API accepted the upload
}

// Size returns the body length in bytes.
func (u Upload) Size() int { return len(u.Body) }

package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound   = errors.New("upload not found")
	ErrNoSnapshot = errors.New("no upload has been processed yet")
	ErrNilStatus  = errors.New("upload status has no id")
)

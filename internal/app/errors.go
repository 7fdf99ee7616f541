package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrEmptyUpload     = errors.New("upload body is empty")
	ErrMissingUploadID = errors.New("upload has no id")
)

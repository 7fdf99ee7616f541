package ingest

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrMalformed       = errors.New("malformed input")
	ErrUnsupportedKind = errors.New("unsupported input kind")
)

package llm

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingAPIKey = errors.New("llm api key not configured")
	ErrUpstream      = errors.New("llm upstream failure")
	ErrEmptyResponse = errors.New("llm returned no choices")
)

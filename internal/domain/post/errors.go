package post

import (
	"errors"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoData        = errors.New("no data provided")
	ErrMissingFields = errors.New("missing required fields")
)

// SchemaError reports an upload whose shape cannot be analysed. It is fatal
// for the whole batch.
type SchemaError struct {
	// Missing lists absent required columns in RequiredColumns order.
	// Empty when the upload had no rows at all.
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return ErrNoData.Error()
	}
	return ErrMissingFields.Error() + ": " + strings.Join(e.Missing, ", ")
}

// Is lets errors.Is match ErrNoData or ErrMissingFields.
func (e *SchemaError) Is(target error) bool {
	if len(e.Missing) == 0 {
		return target == ErrNoData
	}
	return target == ErrMissingFields
}

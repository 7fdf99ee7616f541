package post

import (
	"time"

	"github.com/okian/postpulse/pkg/logger"
)

// Option configures Validate.
type Option func(*validator)

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(v *validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// WithLogger sets the logger that receives row-level diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(v *validator) {
		if l != nil {
			v.log = l
		}
	}
}

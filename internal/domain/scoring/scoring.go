// Package scoring holds the per-post metric primitives shared by every report.
package scoring

import (
	"strings"
	"time"

	"github.com/okian/postpulse/internal/domain/post"
)

// Weights are the engagement coefficients for views, comments and reactions.
type Weights struct {
	Views     float64
	Comments  float64
	Reactions float64
}

// DefaultWeights rank comments as the strongest signal and views as the weakest.
var DefaultWeights = Weights{Views: 0.5, Comments: 2, Reactions: 1}

// Score returns the weighted sum of the three counts.
func (w Weights) Score(views, comments, reactions float64) float64 {
	return views*w.Views + comments*w.Comments + reactions*w.Reactions
}

// Engagement scores raw counts with DefaultWeights.
func Engagement(views, comments, reactions float64) float64 {
	return DefaultWeights.Score(views, comments, reactions)
}

// PostEngagement scores a canonical post with DefaultWeights.
func PostEngagement(p post.Post) float64 {
	return Engagement(p.Views, p.Comments, p.Reactions)
}

// DateLabelLayout renders dates like "Jan 5, 2024".
const DateLabelLayout = "Jan 2, 2006"

// FormatDate renders an ISO-8601 timestamp as a short date label in loc.
// It reports false for empty or unparsable input. Labels are for display
// only and never used as grouping keys.
func FormatDate(iso string, loc *time.Location) (string, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		// A bare date is a calendar day, not an instant.
		d, derr := time.Parse(time.DateOnly, iso)
		if derr != nil {
			return "", false
		}
		return d.Format(DateLabelLayout), true
	}
	return t.In(loc).Format(DateLabelLayout), true
}

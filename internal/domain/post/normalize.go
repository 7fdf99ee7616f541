package post

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// NormalizePlatform case-folds and trims a platform name and merges the
// X/Twitter variants into "twitter". It is idempotent.
func NormalizePlatform(name string) string {
	// Casers keep state, so one per call.
	n := cases.Fold().String(strings.TrimSpace(name))
	if n == "x" {
		return "twitter"
	}
	return n
}

// truthy mirrors the loose truthiness the export producers rely on.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// text renders a cell as a string; nil becomes "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(isoLayout)
	default:
		return ""
	}
}

// number coerces a cell to a non-negative finite float, 0 when it cannot.
func number(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// optionalNumber returns nil when the cell is empty or not numeric.
func optionalNumber(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
			return nil
		}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
	}
	f := number(v)
	return &f
}

var zoneLessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTime accepts RFC 3339, common zone-less date-times (read in loc),
// date-only values (UTC) and epoch milliseconds.
func parseTime(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), !t.IsZero()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC(), true
		}
		if ts, err := time.Parse(time.DateOnly, s); err == nil {
			return ts, true
		}
		for _, layout := range zoneLessLayouts {
			if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
				return ts.UTC(), true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

var whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

type familyTag struct {
	Name *string `json:"name"`
}

// parseTags extracts hyphenated tag names from the family_tags JSON.
// An empty cell yields no tags and no error.
func parseTags(v any) ([]string, error) {
	raw := text(v)
	if raw == "" {
		return []string{}, nil
	}
	var entries []familyTag
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []string{}, err
	}
	tags := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name == nil {
			continue
		}
		tags = append(tags, whitespaceRun.ReplaceAllString(*e.Name, "-"))
	}
	return tags, nil
}

package post

import (
	"context"
	"sort"
	"time"

	"github.com/okian/postpulse/pkg/logger"
	"github.com/okian/postpulse/pkg/metrics"
)

// Reasons a row is excluded from the canonical sequence.
const (
	RejectMissingRow      = "missing_row"
	RejectInvalidDate     = "invalid_date"
	RejectMissingPlatform = "missing_platform"
	RejectNotPosted       = "not_posted"
	RejectNoCounts        = "no_counts"
)

// Stats describes what Validate did with an upload.
type Stats struct {
	Rows       int            `json:"rows"`
	Accepted   int            `json:"accepted"`
	Rejected   map[string]int `json:"rejected"`
	BadTagRows int            `json:"badTagRows"`
}

type validator struct {
	loc *time.Location
	log logger.Logger
}

// Validate checks the schema of rows and returns the canonical posts sorted
// by creation time. See ValidateStats.
func Validate(ctx context.Context, rows []RawRow, opts ...Option) ([]Post, error) {
	posts, _, err := ValidateStats(ctx, rows, opts...)
	return posts, err
}

// ValidateStats is Validate plus a per-reason breakdown of excluded rows.
//
// Required columns are checked on the first row only. Rows failing the
// inclusion predicate are dropped; bad counts and tag JSON are repaired.
func ValidateStats(ctx context.Context, rows []RawRow, opts ...Option) ([]Post, Stats, error) {
	v := &validator{loc: time.Local, log: logger.Nop()}
	for _, opt := range opts {
		opt(v)
	}

	stats := Stats{Rows: len(rows), Rejected: map[string]int{}}
	if len(rows) == 0 {
		return nil, stats, &SchemaError{}
	}
	if missing := missingColumns(rows[0]); len(missing) > 0 {
		return nil, stats, &SchemaError{Missing: missing}
	}

	posts := make([]Post, 0, len(rows))
	for i, row := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		p, reason, tagErr := v.project(row)
		if reason != "" {
			stats.Rejected[reason]++
			continue
		}
		if tagErr != nil {
			stats.BadTagRows++
			metrics.RecordTagParseFailure()
			v.log.Warn(ctx, "error parsing tags", logger.Int("row", i), logger.Error(tagErr))
		}
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})

	stats.Accepted = len(posts)
	for reason, n := range stats.Rejected {
		metrics.RecordRowsRejected(reason, n)
	}
	metrics.RecordPostsAccepted(stats.Accepted)
	if len(stats.Rejected) > 0 {
		v.log.Debug(ctx, "rows excluded",
			logger.Int("rows", stats.Rows),
			logger.Int("accepted", stats.Accepted),
			logger.Any("rejected", stats.Rejected))
	}
	return posts, stats, nil
}

func missingColumns(first RawRow) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := first[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// project applies the inclusion predicate and builds the canonical post.
// A non-empty reason means the row was excluded.
func (v *validator) project(row RawRow) (Post, string, error) {
	if row == nil {
		return Post{}, RejectMissingRow, nil
	}
	created, ok := parseTime(row[ColPostCreatedAt], v.loc)
	if !ok {
		return Post{}, RejectInvalidDate, nil
	}
	if !truthy(row[ColPlatform]) {
		return Post{}, RejectMissingPlatform, nil
	}
	if status, _ := row[ColStatus].(string); status != StatusPosted {
		return Post{}, RejectNotPosted, nil
	}
	if row[ColViews] == nil && row[ColComments] == nil && row[ColReactions] == nil {
		return Post{}, RejectNoCounts, nil
	}

	tags, tagErr := parseTags(row[ColFamilyTags])

	p := Post{
		Platform:           NormalizePlatform(text(row[ColPlatform])),
		CreatedAt:          created,
		Status:             StatusPosted,
		Views:              number(row[ColViews]),
		Comments:           number(row[ColComments]),
		Reactions:          number(row[ColReactions]),
		Title:              text(row[ColFamilyName]),
		Author:             text(row[ColProfileName]),
		RawAuthor:          text(row[ColAuthor]),
		RawTitle:           text(row[ColTitle]),
		Tags:               tags,
		FamilyTags:         text(row[ColFamilyTags]),
		Content:            text(row[ColContent]),
		ScheduleWeeksAhead: optionalNumber(row[ColScheduleWeeksAhead]),
		ExtPostService:     text(row[ColExtPostService]),
		OwnerEmail:         text(row[ColOwnerEmail]),
	}
	if fc, ok := parseTime(row[ColFirstComment], v.loc); ok {
		p.FirstComment = &fc
	}
	return p, "", tagErr
}

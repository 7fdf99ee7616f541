// Package report computes the seven engagement reports over canonical posts.
//
// Every aggregator is a pure function: one pass into a keyed accumulator,
// then conversion into the output slice. None of them mutate their input,
// so Build runs them concurrently over the same slice.
package report

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/pkg/metrics"
)

// Report names, also used as JSON keys of Set.
const (
	NamePlatform  = "platform"
	NameTimeBased = "timeBased"
	NameFormat    = "format"
	NameTags      = "tags"
	NameCreators  = "creators"
	NameSchedule  = "schedule"
	NameComments  = "comments"
)

// Names lists the reports in presentation order.
var Names = []string{NamePlatform, NameTimeBased, NameFormat, NameTags, NameCreators, NameSchedule, NameComments}

// ErrUnknownReport is returned by Set.Get for a name outside Names.
var ErrUnknownReport = errors.New("unknown report")

// Set holds one result of every aggregator.
type Set struct {
	Platform  []PlatformStat  `json:"platform"`
	TimeBased []DailyTrend    `json:"timeBased"`
	Format    []FormatStat    `json:"format"`
	Tags      []TagStat       `json:"tags"`
	Creators  []CreatorStat   `json:"creators"`
	Schedule  ScheduleGrid    `json:"schedule"`
	Comments  []CommentBucket `json:"comments"`
}

// Get returns the report called name.
func (s Set) Get(name string) (any, error) {
	switch name {
	case NamePlatform:
		return s.Platform, nil
	case NameTimeBased:
		return s.TimeBased, nil
	case NameFormat:
		return s.Format, nil
	case NameTags:
		return s.Tags, nil
	case NameCreators:
		return s.Creators, nil
	case NameSchedule:
		return s.Schedule, nil
	case NameComments:
		return s.Comments, nil
	}
	return nil, ErrUnknownReport
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	loc        *time.Location
	classifier Classifier
}

// WithLocation sets the zone of the schedule grid. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(b *builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithClassifier replaces the content format heuristic.
func WithClassifier(c Classifier) Option {
	return func(b *builder) {
		if c != nil {
			b.classifier = c
		}
	}
}

// Build computes all seven reports concurrently.
func Build(ctx context.Context, posts []post.Post, opts ...Option) (Set, error) {
	b := &builder{loc: time.Local, classifier: ClassifyBySubstring}
	for _, opt := range opts {
		opt(b)
	}

	start := time.Now()
	var set Set
	g, gctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}
	run(func() { set.Platform = Platforms(posts) })
	run(func() { set.TimeBased = TimeBased(posts) })
	run(func() { set.Format = Formats(posts, b.classifier) })
	run(func() { set.Tags = Tags(posts) })
	run(func() { set.Creators = Creators(posts) })
	run(func() { set.Schedule = Schedule(posts, b.loc) })
	run(func() { set.Comments = Comments(posts) })

	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	metrics.RecordReportBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	return set, nil
}

// mean divides total by n, or returns 0 when n is 0.
func mean(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// stringSet keeps distinct values in first-seen order.
type stringSet struct {
	seen  map[string]struct{}
	order []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *stringSet) len() int { return len(s.order) }

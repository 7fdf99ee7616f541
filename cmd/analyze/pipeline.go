package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/postpulse/internal/adapters/ingest"
	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/pkg/logger"
)

// analysis is the result of one offline run over a file.
type analysis struct {
	posts []post.Post
	stats post.Stats
	set   report.Set
}

// analyze decodes path, validates its rows and builds every report.
func (o *rootOptions) analyze(ctx context.Context, path string) (*analysis, error) {
	loc := o.loc
	if loc == nil {
		loc = time.Local
	}
	log := o.logr()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := ingest.Decode(ctx, f, ingest.KindFromName(path, ""))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	posts, stats, err := post.ValidateStats(ctx, rows, post.WithLocation(loc), post.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	set, err := report.Build(ctx, posts, report.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("build reports: %w", err)
	}

	log.Debug(ctx, "file analyzed",
		logger.String("path", path),
		logger.Int("rows", stats.Rows),
		logger.Int("posts", stats.Accepted),
		logger.Int("bad_tag_rows", stats.BadTagRows),
	)
	return &analysis{posts: posts, stats: stats, set: set}, nil
}

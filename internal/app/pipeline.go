package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/okian/postpulse/internal/adapters/ingest"
	"github.com/okian/postpulse/internal/adapters/llm"
	"github.com/okian/postpulse/internal/adapters/repository"
	"github.com/okian/postpulse/internal/domain/model"
	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/prompt"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/internal/domain/types"
	"github.com/okian/postpulse/pkg/logger"
	"github.com/okian/postpulse/pkg/metrics"
)

// Pipeline stages, used as the failure label.
const (
	stageDecode   = "decode"
	stageValidate = "validate"
	stageReport   = "report"
	stageStore    = "store"
)

// Process decodes, validates and aggregates one upload, then publishes the
// result as the latest snapshot. It is run by the worker pool.
func (s *Service) Process(ctx context.Context, u model.Upload) error { //nolint:gocritic // hugeParam
	start := time.Now()
	log := s.log()

	_, _ = s.store.Update(ctx, u.ID, func(st *types.UploadStatus) {
		st.State = types.StateProcessing
	})

	rows, err := ingest.Decode(ctx, bytes.NewReader(u.Body), ingest.Kind(u.Kind))
	if err != nil {
		return s.fail(ctx, u, stageDecode, post.Stats{}, err)
	}
	metrics.RecordRowsReceived(len(rows))

	posts, stats, err := post.ValidateStats(ctx, rows,
		post.WithLocation(s.location),
		post.WithLogger(log),
	)
	if err != nil {
		return s.fail(ctx, u, stageValidate, stats, err)
	}

	set, err := report.Build(ctx, posts, report.WithLocation(s.location))
	if err != nil {
		return s.fail(ctx, u, stageReport, stats, err)
	}

	done := time.Now().UTC()
	if err := s.store.Publish(ctx, &repository.Snapshot{
		UploadID:    u.ID,
		Posts:       posts,
		Reports:     set,
		CompletedAt: done,
	}); err != nil {
		return s.fail(ctx, u, stageStore, stats, err)
	}

	_, _ = s.store.Update(ctx, u.ID, func(st *types.UploadStatus) {
		st.State = types.StateCompleted
		st.Rows = stats.Rows
		st.Posts = stats.Accepted
		st.Rejected = stats.Rejected
		st.Error = ""
		st.CompletedAt = &done
	})

	log.Info(ctx, "upload processed",
		logger.String("upload_id", u.ID),
		logger.Int("rows", stats.Rows),
		logger.Int("posts", stats.Accepted),
		logger.Int("bad_tag_rows", stats.BadTagRows),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Service) fail(ctx context.Context, u model.Upload, stage string, stats post.Stats, err error) error { //nolint:gocritic // hugeParam
	now := time.Now().UTC()
	_, _ = s.store.Update(ctx, u.ID, func(st *types.UploadStatus) {
		st.State = types.StateFailed
		st.Rows = stats.Rows
		st.Rejected = stats.Rejected
		st.Error = err.Error()
		st.CompletedAt = &now
	})
	metrics.RecordUploadFailed(stage)
	metrics.RecordErrorByComponent("service", stage)
	return fmt.Errorf("%s upload %s: %w", stage, u.ID, err)
}

// Latest returns the snapshot of the most recently completed upload.
func (s *Service) Latest(ctx context.Context) (*repository.Snapshot, error) {
	return s.store.Latest(ctx)
}

// Reports returns the latest report set and the upload it was built from.
func (s *Service) Reports(ctx context.Context) (string, report.Set, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return "", report.Set{}, err
	}
	return snap.UploadID, snap.Reports, nil
}

// Report returns one named report from the latest snapshot.
func (s *Service) Report(ctx context.Context, name string) (any, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Reports.Get(name)
}

// Prompts renders the analysis prompts for the latest snapshot.
func (s *Service) Prompts(ctx context.Context) (prompt.Prompts, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return prompt.FromReports(snap.Reports)
}

// RecommendationPrompt renders the recommendation prompt for the latest snapshot.
func (s *Service) RecommendationPrompt(ctx context.Context) (string, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return "", err
	}
	return prompt.RecommendationFromReports(snap.Reports)
}

// AnalysisEnabled reports whether a language model is configured.
func (s *Service) AnalysisEnabled() bool {
	return s.analyzer != nil && s.analyzer.Enabled()
}

// AnalyzePrompt sends the named analysis prompt of the latest snapshot to
// the language model. The name "recommendation" selects the recommendation prompt.
func (s *Service) AnalyzePrompt(ctx context.Context, name string) (string, error) {
	if !s.AnalysisEnabled() {
		return "", llm.ErrMissingAPIKey
	}

	var (
		text string
		err  error
	)
	if name == prompt.NameRecommendation {
		text, err = s.RecommendationPrompt(ctx)
	} else {
		var ps prompt.Prompts
		if ps, err = s.Prompts(ctx); err == nil {
			text, err = ps.Get(name)
		}
	}
	if err != nil {
		return "", err
	}
	return s.AnalyzeText(ctx, text)
}

// AnalyzeText sends free-form prompt text to the language model.
func (s *Service) AnalyzeText(ctx context.Context, text string) (string, error) {
	if !s.AnalysisEnabled() {
		return "", llm.ErrMissingAPIKey
	}
	out, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.log().Warn(ctx, "analysis failed", logger.Error(err))
		return "", err
	}
	return out, nil
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/postpulse/internal/domain/dedupe"
	"github.com/okian/postpulse/internal/domain/model"
	"github.com/okian/postpulse/internal/domain/prompt"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/internal/domain/types"
)

const defaultMaxUploadBytes = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	UploadDependencies
	ReportDependencies
	PromptDependencies
	AnalysisDependencies
}

// UploadDependencies accepts uploads and reports their status.
type UploadDependencies interface {
	dedupe.Deduper

	// Enqueue hands an upload to the workers. Returns queue.ErrQueueFull on backpressure.
	Enqueue(ctx context.Context, u model.Upload) error
	UploadStatus(ctx context.Context, id string) (types.UploadStatus, error)
}

// ReportDependencies reads the latest report set.
type ReportDependencies interface {
	Reports(ctx context.Context) (string, report.Set, error)
}

// PromptDependencies renders prompts from the latest report set.
type PromptDependencies interface {
	Prompts(ctx context.Context) (prompt.Prompts, error)
	RecommendationPrompt(ctx context.Context) (string, error)
}

// AnalysisDependencies forwards prompts to a language model.
type AnalysisDependencies interface {
	AnalysisEnabled() bool
	AnalyzePrompt(ctx context.Context, name string) (string, error)
	AnalyzeText(ctx context.Context, text string) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	uploadsHandler  *UploadsHandler
	reportsHandler  *ReportsHandler
	promptsHandler  *PromptsHandler
	analysisHandler *AnalysisHandler
}

// Option configures the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes caps the accepted upload body size.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		uploadsHandler:  NewUploadsHandler(deps, cfg.maxUploadBytes),
		reportsHandler:  NewReportsHandler(deps),
		promptsHandler:  NewPromptsHandler(deps),
		analysisHandler: NewAnalysisHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/uploads", MetricsMiddleware(s.uploadsHandler.HandlePostUpload, "uploads"))
	mux.HandleFunc("/uploads/", MetricsMiddleware(s.uploadsHandler.HandleGetUpload, "upload_status"))
	mux.HandleFunc("/reports", MetricsMiddleware(s.reportsHandler.HandleGetReports, "reports"))
	mux.HandleFunc("/reports/", MetricsMiddleware(s.reportsHandler.HandleGetReport, "report"))
	mux.HandleFunc("/prompts", MetricsMiddleware(s.promptsHandler.HandleGetPrompts, "prompts"))
	mux.HandleFunc("/prompts/", MetricsMiddleware(s.promptsHandler.HandleGetPrompt, "prompt"))
	mux.HandleFunc("/analysis", MetricsMiddleware(s.analysisHandler.HandlePostAnalysis, "analysis"))
}

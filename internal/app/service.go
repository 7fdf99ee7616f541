// Package service wires the ingest pipeline together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	uploadqueue "github.com/okian/postpulse/internal/adapters/mq/queue"
	workerpool "github.com/okian/postpulse/internal/adapters/mq/worker"
	"github.com/okian/postpulse/internal/adapters/repository"
	"github.com/okian/postpulse/internal/domain/dedupe"
	"github.com/okian/postpulse/internal/domain/model"
	"github.com/okian/postpulse/internal/domain/types"
	"github.com/okian/postpulse/pkg/logger"
	"github.com/okian/postpulse/pkg/metrics"
)

// Analyzer sends a prompt to a language model.
type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Service implements the API dependencies for the analytics pipeline.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	queue    *uploadqueue.InMemoryQueue
	pool     *workerpool.Pool
	analyzer Analyzer

	workerCount   int
	queueSize     int
	dedupeSize    int
	statusHistory int
	location      *time.Location

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of uploads waiting to be processed.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many upload IDs are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStatusHistory sets how many upload status records are kept.
func WithStatusHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.statusHistory = n
		}
	}
}

// WithLocation sets the zone used for zone-less timestamps and the schedule grid.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithAnalyzer sets the language model used by the analysis endpoints.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) {
		s.analyzer = a
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration. Status records
// and the latest snapshot survive Stop and Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   1,
		queueSize:     64,
		dedupeSize:    10_000,
		statusHistory: 1_000,
		location:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = repository.NewMemoryStore(repository.WithHistory(s.statusHistory))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	// Workers outlive the caller's context; Stop drains and cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = uploadqueue.NewInMemoryQueue(uploadqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.ProcessorFunc(s.Process),
		workerpool.WithLogger(s.logger),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("timezone", s.location.String()),
		logger.Bool("llm", s.AnalysisEnabled()),
	)
	return nil
}

// Stop closes the queue and waits for queued uploads to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping analytics service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	if err != nil {
		s.logger.Warn(ctx, "analytics service stopped with pending work", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "analytics service stopped")
	return nil
}

// SeenAndRecord atomically checks if an upload ID was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordUploadDuplicate()
	}
	return seen
}

// Unrecord forgets an upload ID so the client may retry it.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of remembered upload IDs.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue registers u as queued and hands it to the worker pool. It returns
// uploadqueue.ErrQueueFull on backpressure.
func (s *Service) Enqueue(ctx context.Context, u model.Upload) error { //nolint:gocritic // hugeParam
	if u.ID == "" {
		return ErrMissingUploadID
	}
	if len(u.Body) == 0 {
		return ErrEmptyUpload
	}
	if u.ReceivedAt.IsZero() {
		u.ReceivedAt = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}

	if err := s.store.Track(ctx, types.UploadStatus{
		UploadID:   u.ID,
		Filename:   u.Filename,
		State:      types.StateQueued,
		ReceivedAt: u.ReceivedAt,
	}); err != nil {
		return err
	}

	if err := s.queue.Enqueue(ctx, u); err != nil {
		_, _ = s.store.Update(ctx, u.ID, func(st *types.UploadStatus) {
			now := time.Now().UTC()
			st.State = types.StateFailed
			st.Error = err.Error()
			st.CompletedAt = &now
		})
		metrics.RecordUploadFailed("enqueue")
		return err
	}

	metrics.RecordUploadReceived()
	s.log().Debug(ctx, "upload queued",
		logger.String("upload_id", u.ID),
		logger.String("filename", u.Filename),
		logger.Int("bytes", u.Size()),
	)
	return nil
}

// UploadStatus returns the status record of an upload.
func (s *Service) UploadStatus(ctx context.Context, id string) (types.UploadStatus, error) {
	return s.store.Status(ctx, id)
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"trackedUploads": s.store.Count(ctx),
		"timezone":       s.location.String(),
		"llmEnabled":     s.AnalysisEnabled(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	if snap, err := s.store.Latest(ctx); err == nil {
		stats["latestUploadId"] = snap.UploadID
		stats["latestPosts"] = len(snap.Posts)
		stats["latestCompletedAt"] = snap.CompletedAt
	}
	return stats
}

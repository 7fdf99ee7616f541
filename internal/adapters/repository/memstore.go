package repository

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/okian/postpulse/internal/domain/types"
	"github.com/okian/postpulse/pkg/metrics"
)

const defaultHistory = 1_000

// MemoryStore is an in-memory Store. Status records live in a mutex-guarded
// map with insertion order for eviction; the latest snapshot is swapped
// atomically so readers never block a publish.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]*types.UploadStatus
	order    []string
	history  int

	latest atomic.Pointer[Snapshot]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		statuses: make(map[string]*types.UploadStatus),
		history:  defaultHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateTrackedUploads(0)
	return s
}

func (s *MemoryStore) Track(_ context.Context, st types.UploadStatus) error { //nolint:gocritic // hugeParam
	if st.UploadID == "" {
		return ErrNilStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statuses[st.UploadID]; !ok {
		s.order = append(s.order, st.UploadID)
	}
	cp := clone(st)
	s.statuses[st.UploadID] = &cp
	s.evict()

	metrics.UpdateTrackedUploads(len(s.statuses))
	return nil
}

// evict must be called with s.mu held.
func (s *MemoryStore) evict() {
	if s.history <= 0 {
		return
	}
	for len(s.order) > s.history {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.statuses, oldest)
	}
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*types.UploadStatus)) (types.UploadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.statuses[id]
	if !ok {
		return types.UploadStatus{}, ErrNotFound
	}
	fn(st)
	st.UploadID = id
	return clone(*st), nil
}

func (s *MemoryStore) Status(_ context.Context, id string) (types.UploadStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statuses[id]
	if !ok {
		return types.UploadStatus{}, ErrNotFound
	}
	return clone(*st), nil
}

func (s *MemoryStore) Publish(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	s.latest.Store(snap)
	metrics.UpdateLatestPostCount(len(snap.Posts))
	return nil
}

func (s *MemoryStore) Latest(_ context.Context) (*Snapshot, error) {
	snap := s.latest.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses)
}

// clone copies st so callers cannot reach the stored record.
func clone(st types.UploadStatus) types.UploadStatus { //nolint:gocritic // hugeParam
	st.Rejected = maps.Clone(st.Rejected)
	if st.CompletedAt != nil {
		t := *st.CompletedAt
		st.CompletedAt = &t
	}
	return st
}

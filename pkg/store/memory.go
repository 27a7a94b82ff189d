package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/depdistill/pkg/errors"
)

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Analysis
	order []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Analysis)}
}

func (s *MemoryStore) Save(_ context.Context, a *Analysis) error {
	prepare(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Analysis, error) {
	if err := errors.ValidateAnalysisID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Analysis, error) {
	limit = listLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Analysis, 0, min(limit, len(s.order)))
	for _, id := range slices.Backward(s.order) {
		if len(out) == limit {
			break
		}
		a := *s.byID[id]
		a.Result = nil
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)

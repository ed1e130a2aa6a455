package storage

import (
	"context"
	"sync"
)

// InMemoryOverrideStore keeps overrides in process memory. Overrides are lost
// on restart.
type InMemoryOverrideStore struct {
	mu        sync.RWMutex
	overrides map[string]map[string]any
}

func NewInMemoryOverrideStore() *InMemoryOverrideStore {
	return &InMemoryOverrideStore{
		overrides: make(map[string]map[string]any),
	}
}

func (s *InMemoryOverrideStore) Get(ctx context.Context, campaignRun string) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[campaignRun]
	return o, ok, nil
}

func (s *InMemoryOverrideStore) Put(ctx context.Context, campaignRun string, override map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[campaignRun] = override
	return nil
}

// All returns a snapshot of every stored override keyed by campaign run.
func (s *InMemoryOverrideStore) All(ctx context.Context) (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]map[string]any, len(s.overrides))
	for k, v := range s.overrides {
		res[k] = v
	}
	return res, nil
}

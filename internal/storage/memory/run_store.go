package memory

import (
	"context"
	"sync"

	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CampaignRun // keyed by run ID
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.CampaignRun),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
func (s *RunStore) Insert(_ context.Context, run *domain.CampaignRun) error {
	if run == nil || run.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.ID]; exists {
		return storage.ErrDuplicateKey
	}

	clone := run.Clone()
	s.data[run.ID] = &clone
	return nil
}

// GetByID retrieves a run by ID. Returns ErrNotFound if it does not exist.
func (s *RunStore) GetByID(_ context.Context, id string) (*domain.CampaignRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	clone := run.Clone()
	return &clone, nil
}

// UpdateSnapshot replaces the stored state, inserting unknown IDs.
func (s *RunStore) UpdateSnapshot(_ context.Context, run *domain.CampaignRun) error {
	if run == nil || run.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := run.Clone()
	s.data[run.ID] = &clone
	return nil
}

// Delete removes a run. Unknown IDs are a no-op.
func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns all runs.
func (s *RunStore) List(_ context.Context) ([]*domain.CampaignRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CampaignRun, 0, len(s.data))
	for _, run := range s.data {
		clone := run.Clone()
		result = append(result, &clone)
	}
	return result, nil
}

var _ storage.RunStore = (*RunStore)(nil)

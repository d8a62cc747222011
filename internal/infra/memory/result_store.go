package memory

import (
	"context"
	"sync"

	"quizmaster/internal/domain"
)

// ResultStore keeps completions in process memory; the default when no database is configured.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.Completion
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.Completion)}
}

func (s *ResultStore) SaveResult(_ context.Context, c domain.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[c.SessionID] = c
	return nil
}

func (s *ResultStore) GetResult(_ context.Context, sessionID string) (domain.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.results[sessionID]
	if !ok {
		return domain.Completion{}, domain.ErrResultNotFound
	}
	return c, nil
}

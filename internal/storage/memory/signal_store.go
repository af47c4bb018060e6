// Package memory provides in-memory store implementations for tests
// and dry runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"cef-signal/internal/domain"
	"cef-signal/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SignalRecord // keyed by upper-cased ticker
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.SignalRecord),
	}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// UpsertZScore records the score for a ticker, last-write-wins.
func (s *SignalStore) UpsertZScore(_ context.Context, ticker string, zScore *float64, computedAt time.Time) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}
	key := strings.ToUpper(ticker)

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &domain.SignalRecord{
		Ticker:      key,
		LastUpdated: computedAt,
		UpdatedAt:   computedAt,
	}
	if zScore != nil {
		z := *zScore
		record.ZScore = &z
	}
	s.data[key] = record

	return nil
}

// GetZScore retrieves the persisted record for a ticker.
func (s *SignalStore) GetZScore(_ context.Context, ticker string) (*domain.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[strings.ToUpper(ticker)]
	if !ok {
		return nil, storage.ErrNotFound
	}

	recordCopy := *record
	if record.ZScore != nil {
		z := *record.ZScore
		recordCopy.ZScore = &z
	}
	return &recordCopy, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cef-signal/internal/domain"
	"cef-signal/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]domain.PricePoint // keyed by (symbol, date)
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string]domain.PricePoint),
	}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// historyKey generates a unique key for an archived point.
func historyKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, domain.Day(date).Format("2006-01-02"))
}

// InsertBulk archives points for a symbol, overwriting existing dates.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, symbol string, points []domain.PricePoint) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		s.data[historyKey(symbol, p.Date)] = p
	}
	return nil
}

// GetBySymbol retrieves all archived points for a symbol, ordered by date ASC.
func (s *PriceHistoryStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	return s.GetByDateRange(ctx, symbol, time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
}

// GetByDateRange retrieves archived points for a symbol within [start, end] (inclusive).
func (s *PriceHistoryStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := symbol + "|"
	var result []domain.PricePoint
	for key, p := range s.data {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		day := domain.Day(p.Date)
		if day.Before(domain.Day(start)) || day.After(domain.Day(end)) {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cef-signal/internal/domain"
	"cef-signal/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
// Scores live on the etf_static table, one row per fund ticker.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// UpsertZScore records the score for a ticker, last-write-wins.
// A nil zScore is stored as SQL NULL to mark an insufficient-data
// outcome explicitly.
func (s *SignalStore) UpsertZScore(ctx context.Context, ticker string, zScore *float64, computedAt time.Time) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO etf_static (ticker, three_year_z_score, last_updated, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			three_year_z_score = EXCLUDED.three_year_z_score,
			last_updated = EXCLUDED.last_updated,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, strings.ToUpper(ticker), zScore, computedAt)
	if err != nil {
		return fmt.Errorf("upsert z-score for %s: %w", ticker, err)
	}
	return nil
}

// GetZScore retrieves the persisted record for a ticker.
func (s *SignalStore) GetZScore(ctx context.Context, ticker string) (*domain.SignalRecord, error) {
	query := `
		SELECT ticker, three_year_z_score, last_updated, updated_at
		FROM etf_static
		WHERE ticker = $1
	`

	var record domain.SignalRecord
	err := s.pool.QueryRow(ctx, query, strings.ToUpper(ticker)).Scan(
		&record.Ticker, &record.ZScore, &record.LastUpdated, &record.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get z-score for %s: %w", ticker, err)
	}
	return &record, nil
}

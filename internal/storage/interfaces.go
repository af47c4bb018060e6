package storage

import (
	"context"
	"time"

	"cef-signal/internal/domain"
)

// SignalStore persists computed z-scores keyed by fund ticker.
type SignalStore interface {
	// UpsertZScore records the score for a ticker, last-write-wins.
	// A nil zScore records an insufficient-data outcome explicitly,
	// which is distinct from the row not existing.
	UpsertZScore(ctx context.Context, ticker string, zScore *float64, computedAt time.Time) error

	// GetZScore retrieves the persisted record for a ticker.
	// Returns ErrNotFound if no row exists.
	GetZScore(ctx context.Context, ticker string) (*domain.SignalRecord, error)
}

// PriceHistoryStore archives the EOD observations each run scored
// against, so score inputs can be audited or replayed later.
type PriceHistoryStore interface {
	// InsertBulk archives points for a symbol. Re-archiving the same
	// (symbol, date) overwrites; archives are last-write-wins.
	InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error

	// GetBySymbol retrieves all archived points for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.PricePoint, error)

	// GetByDateRange retrieves archived points for a symbol within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)
}

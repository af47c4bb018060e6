package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"cef-signal/internal/domain"
	"cef-signal/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// price_history is a ReplacingMergeTree keyed by (symbol, date), so
// re-archiving a range is naturally last-write-wins.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk archives points for a symbol.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			symbol, date, close, open, high, low, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			symbol, domain.Day(p.Date), p.Close,
			p.Open, p.High, p.Low, p.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all archived points for a symbol, ordered by date ASC.
func (s *PriceHistoryStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	query := `
		SELECT date, close, open, high, low, volume
		FROM price_history FINAL
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// GetByDateRange retrieves archived points for a symbol within [start, end] (inclusive).
func (s *PriceHistoryStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	query := `
		SELECT date, close, open, high, low, volume
		FROM price_history FINAL
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, domain.Day(start), domain.Day(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// scanPriceHistory reads price rows into domain points.
func scanPriceHistory(rows driver.Rows) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Close, &p.Open, &p.High, &p.Low, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}
	return points, nil
}

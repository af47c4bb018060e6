package tiingo

import (
	"fmt"
	"time"

	"cef-signal/internal/domain"
)

// dailyPrice is one record of the Tiingo daily prices response.
// Date arrives as an RFC3339 timestamp ("2024-01-02T00:00:00.000Z");
// only its calendar-date prefix is meaningful for EOD data.
type dailyPrice struct {
	Date   string   `json:"date"`
	Close  float64  `json:"close"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Volume *float64 `json:"volume"`
}

func (r dailyPrice) toPricePoint() (domain.PricePoint, error) {
	if len(r.Date) < len(dateLayout) {
		return domain.PricePoint{}, fmt.Errorf("malformed date %q", r.Date)
	}
	date, err := time.ParseInLocation(dateLayout, r.Date[:len(dateLayout)], time.UTC)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}

	return domain.PricePoint{
		Date:   date,
		Close:  r.Close,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Volume: r.Volume,
	}, nil
}

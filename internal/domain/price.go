package domain

import "time"

// PricePoint represents one trading day's observation for a single
// instrument (fund share price or NAV proxy). Date is a calendar date,
// normalized to midnight UTC. Close must be positive to be usable;
// the remaining OHLCV fields are optional vendor data.
type PricePoint struct {
	Date   time.Time
	Close  float64
	Open   *float64
	High   *float64
	Low    *float64
	Volume *float64
}

// Day truncates t to its calendar date at midnight UTC.
// All date joins and window arithmetic operate on Day-normalized times.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AlignedObservation is one date present in both the fund and NAV series
// with strictly positive closes on both sides.
type AlignedObservation struct {
	Date      time.Time
	FundClose float64
	NAVClose  float64
}

// PremiumDiscount returns (fund / nav) - 1: negative for a discount,
// positive for a premium.
func (o AlignedObservation) PremiumDiscount() float64 {
	return o.FundClose/o.NAVClose - 1.0
}

package domain

import "time"

// Status classifies the outcome of a z-score evaluation.
type Status string

const (
	// StatusActive means a score was computed from a sufficient window.
	StatusActive Status = "active"

	// StatusInsufficientData means the lookback window held fewer
	// observations than the minimum threshold; no score is produced.
	StatusInsufficientData Status = "insufficient_data"

	// StatusNoData means alignment produced nothing to window: an empty
	// fetch, no overlapping dates, or only future-dated observations.
	StatusNoData Status = "no_data"
)

// ZScoreResult is the outcome of evaluating one (fund, NAV) pair.
// Statistics fields are meaningful only when Status == StatusActive;
// DataPoints and Required are also set for StatusInsufficientData.
type ZScoreResult struct {
	Status Status

	ZScore float64

	// Premium/discount statistics, as raw decimals and ×100 for display.
	CurrentPD    float64
	CurrentPDPct float64
	AvgPD        float64
	AvgPDPct     float64
	StddevPD     float64
	StddevPDPct  float64

	DataPoints int
	Required   int

	WindowStart time.Time
	WindowEnd   time.Time
}

// NoDataResult marks a pair that produced nothing to score.
func NoDataResult() ZScoreResult {
	return ZScoreResult{Status: StatusNoData}
}

// InsufficientDataResult marks a window below the minimum size.
func InsufficientDataResult(dataPoints, required int) ZScoreResult {
	return ZScoreResult{
		Status:     StatusInsufficientData,
		DataPoints: dataPoints,
		Required:   required,
	}
}

// Score returns the z-score for persistence: a nil pointer for any
// non-active outcome so callers record "no score" explicitly.
func (r ZScoreResult) Score() *float64 {
	if r.Status != StatusActive {
		return nil
	}
	z := r.ZScore
	return &z
}

// SignalRecord is one persisted z-score row, keyed by ticker.
// A nil ZScore records an insufficient-data outcome, distinct from
// the row not existing at all.
type SignalRecord struct {
	Ticker      string
	ZScore      *float64
	LastUpdated time.Time
	UpdatedAt   time.Time
}

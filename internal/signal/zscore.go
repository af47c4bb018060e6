package signal

import (
	"math"
	"time"

	"cef-signal/internal/domain"
)

// Evaluate runs the full scoring path for one (fund, NAV) pair:
// align on date, select the flexible lookback window at asOf, then
// score. Every outcome is expressed in the result status; Evaluate
// never fails.
func Evaluate(fund, nav []domain.PricePoint, asOf time.Time) domain.ZScoreResult {
	aligned := Align(fund, nav)
	if len(aligned) == 0 {
		return domain.NoDataResult()
	}

	window, ok := SelectWindow(aligned, asOf)
	if !ok {
		return domain.NoDataResult()
	}
	if len(window.Observations) < MinObservations {
		return domain.InsufficientDataResult(len(window.Observations), MinObservations)
	}

	return Compute(window)
}

// Compute scores a window that already satisfies the size floor.
//
// The standard deviation uses the population formula (divide by n, not
// n-1) to match the STDEV.P convention the published scores were
// defined with. A zero deviation means every premium/discount in the
// window is identical; the score is defined as 0.0 there, not an error.
func Compute(w *Window) domain.ZScoreResult {
	n := len(w.Observations)

	pds := make([]float64, n)
	for i, o := range w.Observations {
		pds[i] = o.PremiumDiscount()
	}

	currentPD := pds[n-1] // observations are date-sorted; last is the window end
	avgPD := computeMean(pds)
	stddevPD := computePopulationStddev(pds, avgPD)

	zScore := 0.0
	if stddevPD != 0 {
		zScore = (currentPD - avgPD) / stddevPD
	}

	return domain.ZScoreResult{
		Status:       domain.StatusActive,
		ZScore:       zScore,
		CurrentPD:    currentPD,
		CurrentPDPct: currentPD * 100,
		AvgPD:        avgPD,
		AvgPDPct:     avgPD * 100,
		StddevPD:     stddevPD,
		StddevPDPct:  stddevPD * 100,
		DataPoints:   n,
		WindowStart:  w.Start,
		WindowEnd:    w.End,
	}
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computePopulationStddev calculates sqrt(Σ(x-mean)² / n).
// Population denominator, never the n-1 sample form.
//
// An all-equal series returns exactly 0: the rounded mean of n equal
// values can differ from them by an ulp, which would otherwise surface
// as a ~1e-16 deviation and corrupt the z-score of a flat window.
func computePopulationStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	allEqual := true
	for _, v := range values[1:] {
		if v != values[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

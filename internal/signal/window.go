package signal

import (
	"time"

	"cef-signal/internal/domain"
)

// Lookback policy. The window spans exactly three calendar years back
// from the most recent usable observation, and needs at least one
// trading year of data inside it to score. Real calendars have gaps
// (holidays, halts, short listing history), so anything between the
// 252 floor and the ~756 ceiling is accepted as-is.
const (
	// MinObservations is the hard floor: fewer aligned observations in
	// the window and no score is produced.
	MinObservations = 252

	// LookbackYears is the calendar length of the window.
	LookbackYears = 3
)

// Window is the contiguous run of aligned observations inside
// [Start, End], where End is the most recent aligned date not after the
// as-of date and Start is End minus exactly LookbackYears.
type Window struct {
	Observations []domain.AlignedObservation
	Start        time.Time
	End          time.Time
}

// SelectWindow restricts aligned observations to the flexible lookback
// window ending at the latest date not after asOf. Future-dated
// observations are discarded first so the signal never peeks forward.
// Returns false when no observation is usable at all; the size floor is
// checked by the caller, not here.
func SelectWindow(aligned []domain.AlignedObservation, asOf time.Time) (*Window, bool) {
	asOfDay := domain.Day(asOf)

	var candidates []domain.AlignedObservation
	for _, o := range aligned {
		if !o.Date.After(asOfDay) {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	end := candidates[0].Date
	for _, o := range candidates[1:] {
		if o.Date.After(end) {
			end = o.Date
		}
	}
	start := yearsBefore(end, LookbackYears)

	var inWindow []domain.AlignedObservation
	for _, o := range candidates {
		if !o.Date.Before(start) && !o.Date.After(end) {
			inWindow = append(inWindow, o)
		}
	}

	return &Window{Observations: inWindow, Start: start, End: end}, true
}

// yearsBefore returns the same month/day n years earlier. Go's AddDate
// normalizes Feb 29 into March; clamp back to the end of February so
// the window start never drifts forward past the anchor day.
func yearsBefore(d time.Time, n int) time.Time {
	s := d.AddDate(-n, 0, 0)
	if s.Day() != d.Day() {
		s = s.AddDate(0, 0, -s.Day())
	}
	return s
}

// Package signal computes the premium/discount z-score for a closed-end
// fund: date alignment of the fund and NAV series, flexible-lookback
// window selection, and population-normalized scoring.
package signal

import (
	"sort"
	"time"

	"cef-signal/internal/domain"
)

// Align inner-joins the fund and NAV series on calendar date.
// Observations with a non-positive close on either side never enter the
// result. Output is sorted ascending by date regardless of input order;
// an empty input or an empty join yields an empty slice, which callers
// map to a no-data outcome rather than an error.
func Align(fund, nav []domain.PricePoint) []domain.AlignedObservation {
	if len(fund) == 0 || len(nav) == 0 {
		return nil
	}

	navByDate := make(map[time.Time]float64, len(nav))
	for _, p := range nav {
		if p.Close > 0 {
			navByDate[domain.Day(p.Date)] = p.Close
		}
	}

	var aligned []domain.AlignedObservation
	for _, p := range fund {
		if p.Close <= 0 {
			continue
		}
		day := domain.Day(p.Date)
		navClose, ok := navByDate[day]
		if !ok {
			continue
		}
		aligned = append(aligned, domain.AlignedObservation{
			Date:      day,
			FundClose: p.Close,
			NAVClose:  navClose,
		})
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Date.Before(aligned[j].Date)
	})

	return aligned
}

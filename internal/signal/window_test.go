package signal

import (
	"testing"
	"time"

	"cef-signal/internal/domain"
)

func obs(date time.Time) domain.AlignedObservation {
	return domain.AlignedObservation{Date: date, FundClose: 10, NAVClose: 10}
}

func TestSelectWindow_DiscardsFutureDates(t *testing.T) {
	aligned := []domain.AlignedObservation{
		obs(day(2023, 12, 29)),
		obs(day(2024, 1, 2)),
		obs(day(2024, 1, 3)), // after as-of, must never be seen
	}

	window, ok := SelectWindow(aligned, day(2024, 1, 2))
	if !ok {
		t.Fatal("expected a window")
	}

	if !window.End.Equal(day(2024, 1, 2)) {
		t.Errorf("expected end 2024-01-02, got %v", window.End)
	}
	for _, o := range window.Observations {
		if o.Date.After(day(2024, 1, 2)) {
			t.Errorf("window contains future-dated observation %v", o.Date)
		}
	}
	if len(window.Observations) != 2 {
		t.Errorf("expected 2 observations, got %d", len(window.Observations))
	}
}

func TestSelectWindow_NoCandidates(t *testing.T) {
	aligned := []domain.AlignedObservation{
		obs(day(2024, 6, 3)),
		obs(day(2024, 6, 4)),
	}

	// As-of before every observation: nothing usable.
	if _, ok := SelectWindow(aligned, day(2024, 1, 2)); ok {
		t.Error("expected no window when all observations are future-dated")
	}
	if _, ok := SelectWindow(nil, day(2024, 1, 2)); ok {
		t.Error("expected no window for empty input")
	}
}

func TestSelectWindow_ThreeYearBoundaryInclusive(t *testing.T) {
	aligned := []domain.AlignedObservation{
		obs(day(2020, 12, 31)), // one day before the window start
		obs(day(2021, 1, 1)),   // exactly on the boundary
		obs(day(2024, 1, 1)),
	}

	window, ok := SelectWindow(aligned, day(2024, 1, 1))
	if !ok {
		t.Fatal("expected a window")
	}

	if !window.Start.Equal(day(2021, 1, 1)) {
		t.Errorf("expected start 2021-01-01, got %v", window.Start)
	}
	if len(window.Observations) != 2 {
		t.Fatalf("expected 2 observations (boundary inclusive), got %d", len(window.Observations))
	}
	if !window.Observations[0].Date.Equal(day(2021, 1, 1)) {
		t.Errorf("expected boundary observation included, got %v", window.Observations[0].Date)
	}
	for _, o := range window.Observations {
		if o.Date.Before(window.Start) {
			t.Errorf("window contains observation before start: %v", o.Date)
		}
	}
}

func TestSelectWindow_LeapDayEnd(t *testing.T) {
	aligned := []domain.AlignedObservation{
		obs(day(2021, 2, 28)),
		obs(day(2024, 2, 29)),
	}

	window, ok := SelectWindow(aligned, day(2024, 2, 29))
	if !ok {
		t.Fatal("expected a window")
	}

	// Feb 29 minus three years clamps to Feb 28, not Mar 1.
	if !window.Start.Equal(day(2021, 2, 28)) {
		t.Errorf("expected start 2021-02-28, got %v", window.Start)
	}
	if len(window.Observations) != 2 {
		t.Errorf("expected both observations in window, got %d", len(window.Observations))
	}
}

func TestSelectWindow_EndIsMaxCandidate(t *testing.T) {
	// Input deliberately unsorted; end must still resolve to the max
	// candidate date.
	aligned := []domain.AlignedObservation{
		obs(day(2023, 6, 2)),
		obs(day(2023, 6, 5)),
		obs(day(2023, 6, 1)),
	}

	window, ok := SelectWindow(aligned, day(2023, 12, 29))
	if !ok {
		t.Fatal("expected a window")
	}
	if !window.End.Equal(day(2023, 6, 5)) {
		t.Errorf("expected end 2023-06-05, got %v", window.End)
	}
}

package tiingo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const sampleResponse = `[
	{"date":"2024-01-02T00:00:00.000Z","close":10.25,"open":10.10,"high":10.30,"low":10.05,"volume":125000},
	{"date":"2024-01-03T00:00:00.000Z","close":10.40,"open":10.25,"high":10.45,"low":10.20,"volume":98000}
]`

func TestClient_DailyPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tiingo/daily/GAB/prices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("startDate") != "2023-01-01" || q.Get("endDate") != "2024-01-03" {
			t.Errorf("unexpected date range: %s .. %s", q.Get("startDate"), q.Get("endDate"))
		}
		if q.Get("token") != "test-token" {
			t.Errorf("expected token query parameter, got %q", q.Get("token"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))
	ctx := context.Background()

	points, err := client.DailyPrices(ctx, "GAB",
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyPrices: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date 2024-01-02, got %v", points[0].Date)
	}
	if points[0].Close != 10.25 {
		t.Errorf("expected close 10.25, got %v", points[0].Close)
	}
	if points[0].Open == nil || *points[0].Open != 10.10 {
		t.Errorf("expected open 10.10, got %v", points[0].Open)
	}
	if points[1].Volume == nil || *points[1].Volume != 98000 {
		t.Errorf("expected volume 98000, got %v", points[1].Volume)
	}
}

func TestClient_DailyPrices_OmitsOptionalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2024-01-02T00:00:00.000Z","close":10.25}]`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	points, err := client.DailyPrices(context.Background(), "GAB", time.Now().AddDate(-1, 0, 0), time.Now())
	if err != nil {
		t.Fatalf("DailyPrices: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Open != nil || points[0].Volume != nil {
		t.Errorf("expected nil optional fields, got open=%v volume=%v", points[0].Open, points[0].Volume)
	}
}

func TestClient_DailyPrices_EmptyRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	points, err := client.DailyPrices(context.Background(), "GAB", time.Now().AddDate(-1, 0, 0), time.Now())
	if err != nil {
		t.Fatalf("DailyPrices: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty result, got %d points", len(points))
	}
}

func TestClient_DailyPrices_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"date":"2024-01-02T00:00:00.000Z","close":10.25}]`))
	}))
	defer server.Close()

	client := NewClient("test-token",
		WithBaseURL(server.URL),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond))

	points, err := client.DailyPrices(context.Background(), "GAB", time.Now().AddDate(-1, 0, 0), time.Now())
	if err != nil {
		t.Fatalf("DailyPrices after retries: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("expected 1 point, got %d", len(points))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_DailyPrices_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-token",
		WithBaseURL(server.URL),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond))

	_, err := client.DailyPrices(context.Background(), "NOPE", time.Now().AddDate(-1, 0, 0), time.Now())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt for a client error, got %d", calls.Load())
	}
}

func TestClient_DailyPrices_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail":"not a list"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	_, err := client.DailyPrices(context.Background(), "GAB", time.Now().AddDate(-1, 0, 0), time.Now())
	if err == nil {
		t.Fatal("expected decode error for malformed body")
	}
}

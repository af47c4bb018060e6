// Package orchestrator runs the per-pair scoring pipeline:
// fetch → align → window → score → persist.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cef-signal/internal/domain"
	"cef-signal/internal/observability"
	"cef-signal/internal/signal"
	"cef-signal/internal/storage"
)

// FetchYears is how far back each series is requested. Four years of
// history guarantees a full three-year window even with calendar gaps.
const FetchYears = 4

// PriceFetcher retrieves EOD observations for one symbol.
type PriceFetcher interface {
	DailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)
}

// Orchestrator evaluates a batch of instrument pairs. Every pair is
// independent: a failure on one is logged and counted, never fatal for
// the rest.
type Orchestrator struct {
	fetcher      PriceFetcher
	signalStore  storage.SignalStore
	priceHistory storage.PriceHistoryStore
	pairs        []domain.InstrumentPair

	now     func() time.Time
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Fetcher     PriceFetcher
	SignalStore storage.SignalStore
	Pairs       []domain.InstrumentPair

	// Optional
	PriceHistory storage.PriceHistoryStore // archive fetched series when set
	Now          func() time.Time          // clock injection, defaults to time.Now
	Logger       *zerolog.Logger           // defaults to a no-op logger
	Metrics      *observability.Metrics
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Orchestrator{
		fetcher:      opts.Fetcher,
		signalStore:  opts.SignalStore,
		priceHistory: opts.PriceHistory,
		pairs:        opts.Pairs,
		now:          now,
		logger:       logger,
		metrics:      opts.Metrics,
	}
}

// RunResult contains per-status counts from one batch run.
type RunResult struct {
	PairsProcessed int
	Active         int
	Insufficient   int
	NoData         int
	Errors         []string
}

// Run evaluates every configured pair. The returned error is non-nil
// only for context cancellation; per-pair failures are collected in
// RunResult.Errors.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	started := o.now()

	for _, pair := range o.pairs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.PairsProcessed++
		outcome, err := o.processPair(ctx, pair)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", pair.Ticker, err))
		}

		switch outcome {
		case domain.StatusActive:
			result.Active++
		case domain.StatusInsufficientData:
			result.Insufficient++
		case domain.StatusNoData:
			result.NoData++
		}
		if o.metrics != nil {
			o.metrics.PairsProcessed.WithLabelValues(string(outcome)).Inc()
		}
	}

	if o.metrics != nil {
		o.metrics.RunDuration.Observe(o.now().Sub(started).Seconds())
		o.metrics.LastSuccessfulRun.Set(float64(o.now().Unix()))
	}

	o.logger.Info().
		Int("pairs", result.PairsProcessed).
		Int("active", result.Active).
		Int("insufficient", result.Insufficient).
		Int("no_data", result.NoData).
		Int("errors", len(result.Errors)).
		Msg("run completed")

	return result, nil
}

// processPair evaluates one pair and persists its outcome. The returned
// status is always meaningful; the error reports fetch or persistence
// trouble for the run summary.
func (o *Orchestrator) processPair(ctx context.Context, pair domain.InstrumentPair) (domain.Status, error) {
	log := o.logger.With().Str("ticker", pair.Ticker).Str("nav_symbol", pair.NAVSymbol).Logger()
	asOf := o.now()
	start := asOf.AddDate(-FetchYears, 0, 0)

	fund, err := o.fetchSeries(ctx, "fund", pair.Ticker, start, asOf)
	if err != nil {
		log.Warn().Err(err).Msg("fund series fetch failed")
		return domain.StatusNoData, fmt.Errorf("fetch fund series: %w", err)
	}
	nav, err := o.fetchSeries(ctx, "nav", pair.NAVSymbol, start, asOf)
	if err != nil {
		log.Warn().Err(err).Msg("nav series fetch failed")
		return domain.StatusNoData, fmt.Errorf("fetch nav series: %w", err)
	}
	log.Debug().Int("fund_points", len(fund)).Int("nav_points", len(nav)).Msg("series fetched")

	o.archive(ctx, pair.Ticker, fund, log)
	o.archive(ctx, pair.NAVSymbol, nav, log)

	result := signal.Evaluate(fund, nav, asOf)

	switch result.Status {
	case domain.StatusNoData:
		// Nothing to score and nothing to record: an absent or
		// non-overlapping series leaves the existing row untouched.
		log.Warn().Msg("no overlapping observations, skipping persist")
		return result.Status, nil

	case domain.StatusInsufficientData:
		log.Warn().
			Int("data_points", result.DataPoints).
			Int("required", result.Required).
			Msg("insufficient data, persisting null score")

	case domain.StatusActive:
		if o.metrics != nil {
			o.metrics.ScoresComputed.Inc()
		}
		log.Info().
			Float64("z_score", result.ZScore).
			Float64("current_pd_pct", result.CurrentPDPct).
			Float64("avg_pd_pct", result.AvgPDPct).
			Float64("stddev_pd_pct", result.StddevPDPct).
			Int("data_points", result.DataPoints).
			Time("window_start", result.WindowStart).
			Time("window_end", result.WindowEnd).
			Msg("z-score computed")
	}

	if err := o.upsert(ctx, pair.Ticker, result); err != nil {
		log.Error().Err(err).Msg("persist failed")
		return result.Status, err
	}
	return result.Status, nil
}

func (o *Orchestrator) fetchSeries(ctx context.Context, leg, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	if o.metrics != nil {
		o.metrics.FetchRequests.Inc()
		timer := time.Now()
		defer func() {
			o.metrics.FetchLatency.WithLabelValues(leg).Observe(time.Since(timer).Seconds())
		}()
	}

	points, err := o.fetcher.DailyPrices(ctx, symbol, start, end)
	if err != nil {
		if o.metrics != nil {
			o.metrics.FetchErrors.WithLabelValues(leg).Inc()
		}
		return nil, err
	}
	return points, nil
}

// archive stores fetched observations in the price history when an
// archive is configured. Archive failures never affect scoring.
func (o *Orchestrator) archive(ctx context.Context, symbol string, points []domain.PricePoint, log zerolog.Logger) {
	if o.priceHistory == nil || len(points) == 0 {
		return
	}
	if err := o.priceHistory.InsertBulk(ctx, symbol, points); err != nil {
		if o.metrics != nil {
			o.metrics.ArchiveErrors.Inc()
		}
		log.Warn().Err(err).Str("symbol", symbol).Msg("price history archive failed")
	}
}

func (o *Orchestrator) upsert(ctx context.Context, ticker string, result domain.ZScoreResult) error {
	timer := time.Now()
	err := o.signalStore.UpsertZScore(ctx, ticker, result.Score(), o.now())
	if o.metrics != nil {
		o.metrics.UpsertDuration.Observe(time.Since(timer).Seconds())
		if err != nil {
			o.metrics.UpsertErrors.Inc()
		}
	}
	if err != nil {
		return fmt.Errorf("upsert z-score: %w", err)
	}
	return nil
}

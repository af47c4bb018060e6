// Package main is the z-score batch driver: it loads the configured
// instrument pairs, evaluates each one against Tiingo EOD data and
// persists the scores to Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"cef-signal/internal/config"
	"cef-signal/internal/domain"
	"cef-signal/internal/observability"
	"cef-signal/internal/orchestrator"
	"cef-signal/internal/storage"
	chstore "cef-signal/internal/storage/clickhouse"
	"cef-signal/internal/storage/memory"
	"cef-signal/internal/storage/migrations"
	pgstore "cef-signal/internal/storage/postgres"
	"cef-signal/internal/tiingo"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
	pairsFlag := flag.String("pairs", "", "Comma-separated TICKER:NAVSYMBOL pairs, overriding the config")
	asOf := flag.String("as-of", "", "Score as of this date (YYYY-MM-DD) instead of now")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse (dry run)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address, overriding the config (empty keeps config value)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	pairs := cfg.InstrumentPairs()
	if *pairsFlag != "" {
		pairs, err = parsePairs(*pairsFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse --pairs")
		}
	}

	now := time.Now
	if *asOf != "" {
		fixed, err := time.ParseInLocation(dateLayout, *asOf, time.UTC)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse --as-of")
		}
		now = func() time.Time { return fixed }
	}

	// Create context with cancellation for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("cancelling run")
		cancel()
	}()

	addr := cfg.Metrics.Addr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		go serveMetrics(addr, logger)
	}

	signalStore, priceHistory, cleanup, err := createStores(ctx, cfg, *useMemory, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage setup")
	}
	defer cleanup()

	clientOpts := []tiingo.ClientOption{}
	if cfg.Tiingo.BaseURL != "" {
		clientOpts = append(clientOpts, tiingo.WithBaseURL(cfg.Tiingo.BaseURL))
	}
	if cfg.Tiingo.Timeout > 0 {
		clientOpts = append(clientOpts, tiingo.WithTimeout(cfg.Tiingo.Timeout))
	}
	fetcher := tiingo.NewClient(cfg.Tiingo.APIKey, clientOpts...)

	orch := orchestrator.New(orchestrator.Options{
		Fetcher:      fetcher,
		SignalStore:  signalStore,
		PriceHistory: priceHistory,
		Pairs:        pairs,
		Now:          now,
		Logger:       &logger,
		Metrics:      observability.NewMetrics(""),
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("run aborted")
	}
	for _, e := range result.Errors {
		logger.Warn().Str("pair_error", e).Msg("pair failed")
	}
	if result.PairsProcessed > 0 && len(result.Errors) == result.PairsProcessed {
		logger.Fatal().Msg("every pair failed")
	}
}

// createStores wires either the in-memory stores or Postgres (+ optional
// ClickHouse archive), running migrations on the real backends.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool, logger zerolog.Logger) (storage.SignalStore, storage.PriceHistoryStore, func(), error) {
	if useMemory {
		logger.Info().Msg("using in-memory storage")
		return memory.NewSignalStore(), memory.NewPriceHistoryStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	signalStore := pgstore.NewSignalStore(pool)

	var priceHistory storage.PriceHistoryStore
	cleanup := func() { pool.Close() }

	if cfg.ClickHouse.Enabled {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			// The archive is best-effort; scoring proceeds without it.
			logger.Warn().Err(err).Msg("clickhouse unavailable, running without price history archive")
		} else {
			priceHistory = chstore.NewPriceHistoryStore(conn)
			cleanup = func() {
				conn.Close()
				pool.Close()
			}
		}
	}

	return signalStore, priceHistory, cleanup, nil
}

// parsePairs parses "GAB:XGABX,USA:XUSAX" into instrument pairs.
func parsePairs(s string) ([]domain.InstrumentPair, error) {
	var pairs []domain.InstrumentPair
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, nav, ok := strings.Cut(part, ":")
		if !ok || ticker == "" || nav == "" {
			return nil, fmt.Errorf("malformed pair %q, want TICKER:NAVSYMBOL", part)
		}
		pairs = append(pairs, domain.InstrumentPair{Ticker: ticker, NAVSymbol: nav})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs given")
	}
	return pairs, nil
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/fetcher"
	"github.com/cohortlab/cohort-cli/internal/resilience"
	"github.com/cohortlab/cohort-cli/internal/store"
	"github.com/cohortlab/cohort-cli/pkg/bechdel"
	"github.com/cohortlab/cohort-cli/pkg/tmdb"
)

// pipelineEnv holds the store and catalog lookups needed by the stage
// commands.
type pipelineEnv struct {
	Store    store.Store
	Catalogs *fetcher.Fetcher
	Breakers *resilience.Breakers // nil when circuit breaking is off
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Breakers != nil {
		for catalog, state := range pe.Breakers.States() {
			zap.L().Debug("circuit state at exit", zap.String("catalog", catalog), zap.Stringer("state", state))
		}
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline opens the store and builds the catalog clients. Callers
// should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := openStore(ctx, config.ModeCatalog)
	if err != nil {
		return nil, err
	}

	f, breakers := newFetcher(cfg)
	return &pipelineEnv{Store: st, Catalogs: f, Breakers: breakers}, nil
}

// newFetcher wires the catalog clients with the configured lookup policies.
func newFetcher(c *config.Config) (*fetcher.Fetcher, *resilience.Breakers) {
	tm := tmdb.NewClient(c.TMDB.Token,
		tmdb.WithBaseURL(c.TMDB.BaseURL),
		tmdb.WithLanguage(c.TMDB.Language),
		tmdb.WithRateLimit(c.TMDB.RateLimit),
	)
	bd := bechdel.NewClient(
		bechdel.WithBaseURL(c.Bechdel.BaseURL),
		bechdel.WithRateLimit(c.Bechdel.RateLimit),
	)

	opts := fetcher.Options{
		Retry: resilience.NewRetryConfig(c.Fetch.MaxAttempts, c.Fetch.InitialBackoffMs, c.Fetch.MaxBackoffMs),
	}
	if c.Fetch.CircuitFailureThreshold > 0 {
		opts.Breakers = resilience.NewBreakers(c.Fetch.CircuitFailureThreshold, time.Duration(c.Fetch.CircuitResetSecs)*time.Second)
	}
	return fetcher.New(tm, bd, opts), opts.Breakers
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

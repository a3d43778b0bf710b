// Package resolver is the resolution facade: a closed set of metadata
// operations dispatched over typed requests, each producing a {data, error}
// envelope. The facade owns request validation, per-operation timeouts,
// the store-unavailable retry budget, panic containment and the mapping of
// internal errors onto the stable error-kind taxonomy.
package resolver

import (
	"log/slog"
	"time"

	"github.com/c360/metaresolve/config"
	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/glossary"
	"github.com/c360/metaresolve/graph"
	"github.com/c360/metaresolve/health"
	"github.com/c360/metaresolve/metric"
	"github.com/c360/metaresolve/pathfind"
	"github.com/c360/metaresolve/pkg/retry"
	"github.com/c360/metaresolve/schema"
)

// Deps holds the dependencies for the resolver
type Deps struct {
	Store   *graph.Store
	Logger  *slog.Logger
	Metrics *metric.MetricsRegistry
}

// Resolver dispatches resolution operations against the graph store.
type Resolver struct {
	config    config.Config
	store     *graph.Store
	assembler *schema.Assembler
	searcher  *glossary.Searcher
	finder    *pathfind.Finder
	logger    *slog.Logger
	metrics   *metric.Metrics
	retryCfg  retry.Config
	startedAt time.Time
}

// New creates a resolver and its query components from a validated
// configuration. Metrics are optional; a nil registry disables recording.
func New(cfg config.Config, deps Deps) (*Resolver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "resolver", "New",
			"store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	assembler, err := schema.NewAssembler(schema.Deps{
		Store:  deps.Store,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	searcher, err := glossary.NewSearcher(glossary.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}, glossary.Deps{
		Store:  deps.Store,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	finder, err := pathfind.NewFinder(pathfind.Config{
		MaxDepth: cfg.Pathfind.MaxDepth,
		MaxPaths: cfg.Pathfind.MaxPaths,
	}, pathfind.Deps{
		Store:  deps.Store,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		config:    cfg,
		store:     deps.Store,
		assembler: assembler,
		searcher:  searcher,
		finder:    finder,
		logger:    deps.Logger.With("component", "resolver"),
		retryCfg:  cfg.StoreRetry.ToRetryConfig(),
		startedAt: time.Now(),
	}
	if deps.Metrics != nil {
		r.metrics = deps.Metrics.CoreMetrics()
	}

	return r, nil
}

// HealthStatus reports the resolver's health, with the store as a
// sub-status. The resolver itself is healthy whenever the store is
// readable; a degraded store degrades the resolver.
func (r *Resolver) HealthStatus() health.Status {
	storeStatus := health.FromStore(r.store)

	var status health.Status
	switch {
	case storeStatus.IsUnhealthy():
		status = health.Unhealthy("resolver", "graph store not readable")
	case storeStatus.IsDegraded():
		status = health.Degraded("resolver", "graph store degraded")
	default:
		status = health.Healthy("resolver", "")
	}

	return status.
		WithSubStatus(storeStatus).
		WithMetrics(&health.Metrics{Uptime: time.Since(r.startedAt)})
}

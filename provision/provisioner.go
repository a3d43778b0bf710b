package provision

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
	"github.com/c360/metaresolve/health"
	"github.com/c360/metaresolve/metric"
	"github.com/c360/metaresolve/pkg/retry"
)

// Deps holds the dependencies for the provisioner
type Deps struct {
	Source  Source
	Store   *graph.Store
	Logger  *slog.Logger
	Metrics *metric.MetricsRegistry
}

// Provisioner feeds snapshots from a source into the graph store: one
// retried initial hydration, then periodic refresh. Refresh failures keep
// the previous snapshot in place; readers never regress to an empty store.
type Provisioner struct {
	source  Source
	store   *graph.Store
	logger  *slog.Logger
	metrics *metric.Metrics

	refreshInterval time.Duration

	mu          sync.Mutex
	lastErr     error
	lastRefresh time.Time
}

// NewProvisioner creates a provisioner. The refresh interval must be
// positive; pass the source's expected catalog update cadence.
func NewProvisioner(refreshInterval time.Duration, deps Deps) (*Provisioner, error) {
	if deps.Source == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "provision", "NewProvisioner",
			"source is required")
	}
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "provision", "NewProvisioner",
			"store is required")
	}
	if refreshInterval <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "provision", "NewProvisioner",
			"refresh interval must be positive")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	p := &Provisioner{
		source:          deps.Source,
		store:           deps.Store,
		logger:          deps.Logger.With("component", "provision"),
		refreshInterval: refreshInterval,
	}
	if deps.Metrics != nil {
		p.metrics = deps.Metrics.CoreMetrics()
	}

	return p, nil
}

// Hydrate performs the initial snapshot load, retrying transient source
// failures within the hydration budget. The resolver serves requests only
// after this succeeds, or answers store_unavailable until it does.
func (p *Provisioner) Hydrate(ctx context.Context) error {
	err := retry.Do(ctx, retry.Hydration(), func() error {
		return p.refresh(ctx)
	})
	if err != nil {
		return errors.WrapTransient(err, "provision", "Hydrate", "initial snapshot load")
	}
	return nil
}

// Run refreshes the store until the context is cancelled. Call after
// Hydrate; a failed refresh logs and leaves the current snapshot serving.
func (p *Provisioner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("provisioner stopped")
			return
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.recordFailure(err)
				p.logger.Warn("catalog refresh failed, keeping current snapshot", "error", err)
			}
		}
	}
}

// refresh fetches one snapshot and swaps it in.
func (p *Provisioner) refresh(ctx context.Context) error {
	snap, err := p.source.Fetch(ctx)
	if err != nil {
		return err
	}

	p.store.Swap(snap)

	p.mu.Lock()
	p.lastErr = nil
	p.lastRefresh = time.Now()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordSnapshot(snap.EntityCount(), snap.EdgeCount(), snap.DanglingSkipped())
	}
	p.logger.Debug("snapshot swapped",
		"entities", snap.EntityCount(),
		"edges", snap.EdgeCount())

	return nil
}

func (p *Provisioner) recordFailure(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// HealthStatus reports provisioning health. Not yet hydrated is unhealthy;
// a stale snapshot after a failed refresh is degraded.
func (p *Provisioner) HealthStatus() health.Status {
	if !p.store.Hydrated() {
		return health.Unhealthy("provision", "store not hydrated")
	}

	p.mu.Lock()
	lastErr := p.lastErr
	p.mu.Unlock()

	if lastErr != nil {
		return health.Degraded("provision", "last refresh failed: "+lastErr.Error())
	}
	return health.Healthy("provision", "")
}

package aggregator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flock/internal/cache"
	"flock/internal/core"
	"flock/internal/identity"
	"flock/internal/log"
	"flock/internal/store"
)

const (
	DefaultSnapshotTTL = 5 * time.Minute
	DefaultTrendTTL    = 15 * time.Minute
	DefaultMaxEntries  = 500
)

type DashboardConfig struct {
	SnapshotTTL  time.Duration
	TrendTTL     time.Duration
	MaxEntries   int
	FetchTimeout time.Duration
	TopN         int
	// Now drives both the caches' expiry and the windows snapshots cover.
	Now cache.Clock
}

// Dashboard is the caller-facing API: snapshots and giving trends per
// organization, each behind its own read-through cache.
type Dashboard struct {
	orch      *Orchestrator
	snapshots *cache.ReadThrough[core.ConsolidatedSnapshot]
	trends    *cache.ReadThrough[core.TrendReport]
	resolver  identity.Resolver
	events    *log.StructuredLogger
}

func NewDashboard(st store.RecordStore, resolver identity.Resolver, cfg DashboardConfig, logger *log.Logger) *Dashboard {
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = DefaultSnapshotTTL
	}
	if cfg.TrendTTL <= 0 {
		cfg.TrendTTL = DefaultTrendTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if resolver == nil {
		resolver = identity.ContextResolver{}
	}
	if logger == nil {
		logger = log.Discard()
	}

	return &Dashboard{
		orch: NewOrchestrator(st, OrchestratorConfig{
			FetchTimeout: cfg.FetchTimeout,
			TopN:         cfg.TopN,
			Now:          cfg.Now,
		}, logger),
		snapshots: cache.NewReadThrough(cache.NewLRUCacheWithClock[core.ConsolidatedSnapshot](cfg.MaxEntries, cfg.SnapshotTTL, cfg.Now)),
		trends:    cache.NewReadThrough(cache.NewLRUCacheWithClock[core.TrendReport](cfg.MaxEntries, cfg.TrendTTL, cfg.Now)),
		resolver:  resolver,
		events:    log.NewStructuredLogger(logger.WithComponent(log.ComponentDashboard)),
	}
}

// RegisterCaches hands both tiers to m for periodic expiry cleanup.
func (d *Dashboard) RegisterCaches(m *cache.Manager) {
	m.Register("snapshots", d.snapshots.Cache())
	m.Register("trends", d.trends.Cache())
}

// Snapshot returns the consolidated snapshot for orgID, building it on a
// cache miss. The giving trend inside comes from the trend tier.
func (d *Dashboard) Snapshot(ctx context.Context, orgID uuid.UUID) (core.ConsolidatedSnapshot, error) {
	if orgID == uuid.Nil {
		return core.ConsolidatedSnapshot{}, core.ErrNoOrganization
	}
	return d.snapshots.Get(ctx, orgID.String(), func(ctx context.Context) (core.ConsolidatedSnapshot, error) {
		giving, err := d.GivingTrend(ctx, orgID)
		if err != nil {
			return core.ConsolidatedSnapshot{}, err
		}
		return d.orch.Build(ctx, orgID, giving)
	})
}

// CurrentSnapshot resolves the organization from ctx. ok is false when
// there is none; that is not an error.
func (d *Dashboard) CurrentSnapshot(ctx context.Context) (snap core.ConsolidatedSnapshot, ok bool, err error) {
	orgID, ok := d.resolver.CurrentOrganizationID(ctx)
	if !ok {
		return core.ConsolidatedSnapshot{}, false, nil
	}
	snap, err = d.Snapshot(ctx, orgID)
	return snap, true, err
}

// GivingTrend returns the trend report for orgID from the trend tier.
func (d *Dashboard) GivingTrend(ctx context.Context, orgID uuid.UUID) (core.TrendReport, error) {
	if orgID == uuid.Nil {
		return core.TrendReport{}, core.ErrNoOrganization
	}
	return d.trends.Get(ctx, orgID.String(), func(ctx context.Context) (core.TrendReport, error) {
		return d.orch.Trend(ctx, orgID)
	})
}

func (d *Dashboard) CurrentGivingTrend(ctx context.Context) (report core.TrendReport, ok bool, err error) {
	orgID, ok := d.resolver.CurrentOrganizationID(ctx)
	if !ok {
		return core.TrendReport{}, false, nil
	}
	report, err = d.GivingTrend(ctx, orgID)
	return report, true, err
}

// Invalidate drops both cached tiers for orgID. Write paths call it after
// mutating an organization's records.
func (d *Dashboard) Invalidate(orgID uuid.UUID) {
	key := orgID.String()
	d.snapshots.Invalidate(key)
	d.trends.Invalidate(key)
	d.events.LogCacheInvalidated(context.Background(), key)
}

// InvalidateAll empties both tiers.
func (d *Dashboard) InvalidateAll() {
	d.snapshots.Purge()
	d.trends.Purge()
	d.events.LogCacheInvalidated(context.Background(), "")
}

// Package aggregator builds consolidated dashboard snapshots. The
// Orchestrator fans out one fetch per domain and reduces the results; the
// Dashboard fronts it with the snapshot and trend caches.
package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/reduce"
	"flock/internal/store"
	"flock/internal/timewindow"
	"flock/internal/trend"
)

// DefaultFetchTimeout bounds a single domain fetch.
const DefaultFetchTimeout = 10 * time.Second

type OrchestratorConfig struct {
	FetchTimeout time.Duration
	TopN         int
	Now          func() time.Time
}

type Orchestrator struct {
	store        store.RecordStore
	fetchTimeout time.Duration
	topN         int
	now          func() time.Time
	events       *log.StructuredLogger
}

func NewOrchestrator(st store.RecordStore, cfg OrchestratorConfig, logger *log.Logger) *Orchestrator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Orchestrator{
		store:        st,
		fetchTimeout: cfg.FetchTimeout,
		topN:         cfg.TopN,
		now:          cfg.Now,
		events:       log.NewStructuredLogger(logger.WithComponent(log.ComponentAggregator)),
	}
}

// fetch runs one domain read on g, bounded by timeout even when the store
// ignores its context. On success the records land in dst.
func fetch[T any](ctx context.Context, g *errgroup.Group, timeout time.Duration, domain core.Domain, dst *[]T, read func(context.Context) ([]T, error)) {
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type result struct {
			records []T
			err     error
		}
		ch := make(chan result, 1)
		go func() {
			records, err := read(fctx)
			ch <- result{records, err}
		}()

		select {
		case r := <-ch:
			if r.err != nil {
				return &core.FetchError{Domain: domain, Err: r.err}
			}
			*dst = r.records
			return nil
		case <-fctx.Done():
			return &core.FetchError{Domain: domain, Err: fctx.Err()}
		}
	})
}

// Build fetches every domain for orgID concurrently and reduces the results
// into one snapshot over the current month. Any failed fetch fails the whole
// build with a *core.FetchError; no partial snapshot is returned.
func (o *Orchestrator) Build(ctx context.Context, orgID uuid.UUID, giving core.TrendReport) (core.ConsolidatedSnapshot, error) {
	start := time.Now()
	now := o.now()
	month := timewindow.CurrentMonth(now)
	week := timewindow.CurrentWeek(now)
	// Contributions also feed the current-week total, which may straddle
	// the month boundary.
	gifts := widen(month, week)

	var (
		people        []core.Person
		contributions []core.Contribution
		events        []core.Event
		marks         []core.AttendanceMark
		tasks         []core.Task
		messages      []core.Message
		links         []core.HouseholdLink
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, o.fetchTimeout, core.DomainPeople, &people, func(ctx context.Context) ([]core.Person, error) {
		return o.store.People(ctx, orgID, nil)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainContributions, &contributions, func(ctx context.Context) ([]core.Contribution, error) {
		return o.store.Contributions(ctx, orgID, &gifts)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainEvents, &events, func(ctx context.Context) ([]core.Event, error) {
		return o.store.Events(ctx, orgID, nil)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainAttendance, &marks, func(ctx context.Context) ([]core.AttendanceMark, error) {
		return o.store.Attendance(ctx, orgID, nil)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainTasks, &tasks, func(ctx context.Context) ([]core.Task, error) {
		return o.store.Tasks(ctx, orgID, nil)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainMessages, &messages, func(ctx context.Context) ([]core.Message, error) {
		return o.store.Messages(ctx, orgID, &month)
	})
	fetch(gctx, g, o.fetchTimeout, core.DomainHouseholds, &links, func(ctx context.Context) ([]core.HouseholdLink, error) {
		return o.store.Households(ctx, orgID, nil)
	})

	if err := g.Wait(); err != nil {
		var fe *core.FetchError
		domain := ""
		if errors.As(err, &fe) {
			domain = fe.Domain.String()
		}
		o.events.LogSnapshotFailed(ctx, orgID.String(), domain, err)
		return core.ConsolidatedSnapshot{}, err
	}

	opts := reduce.Options{Now: now, TopN: o.topN, Names: reduce.NameIndex(people)}
	snap := core.ConsolidatedSnapshot{
		OrgID:         orgID,
		GeneratedAt:   now,
		Window:        month,
		People:        reduce.ReducePeople(people, &month, opts),
		Contributions: reduce.ReduceContributions(contributions, &month, opts),
		Events:        reduce.ReduceEvents(events, &month, opts),
		Attendance:    reduce.ReduceAttendance(marks, events, people, &month, opts),
		Tasks:         reduce.ReduceTasks(tasks, &month, opts),
		Messaging:     reduce.ReduceMessages(messages, &month, opts),
		Celebrations:  reduce.ReduceCelebrations(people, opts),
		Households:    reduce.ReduceHouseholds(links, people, opts),
		Giving:        giving,
	}

	o.events.LogSnapshotBuilt(ctx, orgID.String(), time.Since(start))

	return snap, nil
}

// Trend fetches the last four months of contributions and analyzes them.
func (o *Orchestrator) Trend(ctx context.Context, orgID uuid.UUID) (core.TrendReport, error) {
	now := o.now()
	window := trend.Window(now)

	var gifts []core.Contribution
	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, o.fetchTimeout, core.DomainContributions, &gifts, func(ctx context.Context) ([]core.Contribution, error) {
		return o.store.Contributions(ctx, orgID, &window)
	})
	if err := g.Wait(); err != nil {
		return core.TrendReport{}, err
	}
	return trend.Analyze(gifts, now), nil
}

func widen(a, b timewindow.Window) timewindow.Window {
	w := a
	if b.Start.Before(w.Start) {
		w.Start = b.Start
	}
	if b.End.After(w.End) {
		w.End = b.End
	}
	return w
}

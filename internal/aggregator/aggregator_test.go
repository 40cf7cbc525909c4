package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/core"
	"flock/internal/identity"
	"flock/internal/store"
	"flock/internal/store/memory"
	"flock/internal/timewindow"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingStore counts reads per domain and can fail or stall one domain.
type countingStore struct {
	store.RecordStore
	people        atomic.Int32
	contributions atomic.Int32

	failEvents error
	stallTasks chan struct{}
}

func (s *countingStore) People(ctx context.Context, orgID uuid.UUID, w *timewindow.Window) ([]core.Person, error) {
	s.people.Add(1)
	return s.RecordStore.People(ctx, orgID, w)
}

func (s *countingStore) Contributions(ctx context.Context, orgID uuid.UUID, w *timewindow.Window) ([]core.Contribution, error) {
	s.contributions.Add(1)
	return s.RecordStore.Contributions(ctx, orgID, w)
}

func (s *countingStore) Events(ctx context.Context, orgID uuid.UUID, w *timewindow.Window) ([]core.Event, error) {
	if s.failEvents != nil {
		return nil, s.failEvents
	}
	return s.RecordStore.Events(ctx, orgID, w)
}

func (s *countingStore) Tasks(ctx context.Context, orgID uuid.UUID, w *timewindow.Window) ([]core.Task, error) {
	if s.stallTasks != nil {
		// Blocks until the test ends, ignoring ctx.
		<-s.stallTasks
	}
	return s.RecordStore.Tasks(ctx, orgID, w)
}

var start = time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC) // week 1 of October

func gift(id, amount string, at time.Time) core.Contribution {
	return core.Contribution{ID: id, PersonID: "p1", Amount: decimal.RequireFromString(amount), Fund: "Tithe", ReceivedAt: at}
}

func fixture(t *testing.T) (*countingStore, uuid.UUID) {
	t.Helper()
	org := uuid.New()
	mem := memory.New(nil)
	mem.AddPeople(org,
		core.Person{ID: "p1", FirstName: "Ruth", LastName: "Moabi", Status: "Member", CreatedAt: start.AddDate(-1, 0, 0)},
		core.Person{ID: "p2", FirstName: "Boaz", Status: "Visitor", CreatedAt: start},
	)
	mem.AddContributions(org,
		gift("jul", "100", time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)),
		gift("aug", "100", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)),
		gift("sep", "100", time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)),
		gift("oct", "150", time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)),
	)
	mem.AddEvents(org, core.Event{ID: "e1", Title: "Sunday Worship", Category: "Worship", StartsAt: start.AddDate(0, 0, 2)})
	return &countingStore{RecordStore: mem}, org
}

func newDashboard(st store.RecordStore, clock *fakeClock, resolver identity.Resolver) *Dashboard {
	return NewDashboard(st, resolver, DashboardConfig{
		FetchTimeout: 200 * time.Millisecond,
		Now:          clock.Now,
	}, nil)
}

func TestBuildReducesEveryDomain(t *testing.T) {
	st, org := fixture(t)
	clock := newFakeClock(start)
	orch := NewOrchestrator(st, OrchestratorConfig{Now: clock.Now}, nil)

	giving := core.TrendReport{Result: core.TrendResult{Week: 1}}
	snap, err := orch.Build(context.Background(), org, giving)
	require.NoError(t, err)

	assert.Equal(t, org, snap.OrgID)
	assert.Equal(t, start, snap.GeneratedAt)
	assert.Equal(t, timewindow.CurrentMonth(start), snap.Window)
	assert.Equal(t, 2, snap.People.Total)
	assert.Equal(t, 1, snap.People.NewInWindow)
	assert.Equal(t, 1, snap.Contributions.Count)
	assert.Equal(t, int64(15000), snap.Contributions.Total.Cents)
	assert.Equal(t, 1, snap.Events.Upcoming)
	assert.Equal(t, giving, snap.Giving)
}

func TestBuildIncludesCurrentWeekAcrossMonthBoundary(t *testing.T) {
	st, org := fixture(t)
	// Sunday Sep 27 .. Saturday Oct 3 is the current week on Oct 2.
	st.RecordStore.(*memory.Store).AddContributions(org, gift("late-sep", "20", time.Date(2026, 9, 28, 10, 0, 0, 0, time.UTC)))
	orch := NewOrchestrator(st, OrchestratorConfig{Now: newFakeClock(start).Now}, nil)

	snap, err := orch.Build(context.Background(), org, core.TrendReport{})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), snap.Contributions.Total.Cents, "month total excludes September")
	assert.Equal(t, int64(17000), snap.Contributions.WeekTotal.Cents, "week total spans the boundary")
}

func TestBuildFailsFast(t *testing.T) {
	st, org := fixture(t)
	boom := errors.New("connection refused")
	st.failEvents = boom
	orch := NewOrchestrator(st, OrchestratorConfig{Now: newFakeClock(start).Now}, nil)

	snap, err := orch.Build(context.Background(), org, core.TrendReport{})
	require.Error(t, err)
	assert.Zero(t, snap.OrgID, "no partial snapshot")

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.DomainEvents, fe.Domain)
	assert.ErrorIs(t, err, boom)
	assert.True(t, fe.Temporary())
}

func TestBuildBoundsStalledFetch(t *testing.T) {
	st, org := fixture(t)
	st.stallTasks = make(chan struct{})
	t.Cleanup(func() { close(st.stallTasks) })
	orch := NewOrchestrator(st, OrchestratorConfig{FetchTimeout: 50 * time.Millisecond, Now: newFakeClock(start).Now}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := orch.Build(context.Background(), org, core.TrendReport{})
		done <- err
	}()

	select {
	case err := <-done:
		var fe *core.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, core.DomainTasks, fe.Domain)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Build did not return for a stalled fetch")
	}
}

func TestGivingTrendHalfAgain(t *testing.T) {
	st, org := fixture(t)
	d := newDashboard(st, newFakeClock(start), nil)

	report, err := d.GivingTrend(context.Background(), org)
	require.NoError(t, err)
	r := report.Result
	require.NotNil(t, r.DeltaVsAverage)
	require.NotNil(t, r.DeltaVsPriorMonth)
	assert.Equal(t, 50.0, *r.DeltaVsAverage)
	assert.Equal(t, 50.0, *r.DeltaVsPriorMonth)
	assert.Equal(t, core.BasisPriorMonth, r.Basis)
	assert.Equal(t, core.DirectionUp, r.Direction)
}

func TestSnapshotIsCachedWithinTTL(t *testing.T) {
	st, org := fixture(t)
	clock := newFakeClock(start)
	d := newDashboard(st, clock, nil)
	ctx := context.Background()

	first, err := d.Snapshot(ctx, org)
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	second, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
	assert.Equal(t, int32(1), st.people.Load(), "no recomputation within ttl")

	clock.Advance(time.Minute)
	third, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.True(t, third.GeneratedAt.After(first.GeneratedAt))
	assert.Equal(t, int32(2), st.people.Load())
	// The trend tier has a longer ttl and is still warm: one trend fetch plus
	// one month fetch per snapshot build.
	assert.Equal(t, int32(3), st.contributions.Load())
}

func TestInvalidateForcesRecompute(t *testing.T) {
	st, org := fixture(t)
	clock := newFakeClock(start)
	d := newDashboard(st, clock, nil)
	ctx := context.Background()

	first, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Contributions.Count)

	st.RecordStore.(*memory.Store).AddContributions(org, gift("new", "25", start))
	clock.Advance(time.Second)

	cached, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Contributions.Count, "stale until invalidated")

	d.Invalidate(org)
	fresh, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Contributions.Count)
	assert.True(t, fresh.GeneratedAt.After(first.GeneratedAt))
	assert.Equal(t, int64(17500), fresh.Giving.Result.CurrentTotal.Cents, "trend tier was invalidated too")
}

func TestInvalidateAll(t *testing.T) {
	st, org := fixture(t)
	d := newDashboard(st, newFakeClock(start), nil)
	ctx := context.Background()

	_, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	d.InvalidateAll()
	_, err = d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, int32(2), st.people.Load())
}

func TestFetchErrorIsNotCached(t *testing.T) {
	st, org := fixture(t)
	st.failEvents = errors.New("timeout")
	d := newDashboard(st, newFakeClock(start), nil)
	ctx := context.Background()

	_, err := d.Snapshot(ctx, org)
	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)

	st.failEvents = nil
	snap, err := d.Snapshot(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, org, snap.OrgID)
}

func TestCurrentSnapshotWithoutOrganization(t *testing.T) {
	st, _ := fixture(t)
	d := newDashboard(st, newFakeClock(start), identity.ContextResolver{})

	_, ok, err := d.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, st.people.Load(), "nothing is fetched without an organization")

	_, ok, err = d.CurrentGivingTrend(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentSnapshotFromContext(t *testing.T) {
	st, org := fixture(t)
	d := newDashboard(st, newFakeClock(start), identity.ContextResolver{})

	ctx := identity.WithOrganizationID(context.Background(), org)
	snap, ok, err := d.CurrentSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, org, snap.OrgID)
}

func TestSnapshotRejectsNilOrganization(t *testing.T) {
	st, _ := fixture(t)
	d := newDashboard(st, newFakeClock(start), nil)

	_, err := d.Snapshot(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, core.ErrNoOrganization)
}

func TestConcurrentSnapshotsShareOneBuild(t *testing.T) {
	st, org := fixture(t)
	d := newDashboard(st, newFakeClock(start), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Snapshot(context.Background(), org)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), st.people.Load())
}

// Package memory is an in-process record store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/store"
	"flock/internal/timewindow"
)

type orgData struct {
	people        []core.Person
	contributions []core.Contribution
	events        []core.Event
	attendance    []core.AttendanceMark
	tasks         []core.Task
	messages      []core.Message
	households    []core.HouseholdLink
}

type Store struct {
	mu     sync.RWMutex
	logger *log.Logger
	orgs   map[uuid.UUID]*orgData
}

var _ store.Store = (*Store)(nil)

func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		logger: logger.WithComponent(log.ComponentStore),
		orgs:   make(map[uuid.UUID]*orgData),
	}
}

func (s *Store) org(id uuid.UUID) *orgData {
	d, ok := s.orgs[id]
	if !ok {
		d = &orgData{}
		s.orgs[id] = d
	}
	return d
}

// Add* store records as given; malformed ones are kept so that the read
// path can quarantine them like any other backend would.

func (s *Store) AddPeople(orgID uuid.UUID, people ...core.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, p := range people {
		p.OrgID = orgID
		d.people = append(d.people, p)
	}
}

func (s *Store) AddContributions(orgID uuid.UUID, gifts ...core.Contribution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, c := range gifts {
		c.OrgID = orgID
		d.contributions = append(d.contributions, c)
	}
}

func (s *Store) AddEvents(orgID uuid.UUID, events ...core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, e := range events {
		e.OrgID = orgID
		d.events = append(d.events, e)
	}
}

func (s *Store) AddAttendance(orgID uuid.UUID, marks ...core.AttendanceMark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, m := range marks {
		m.OrgID = orgID
		d.attendance = append(d.attendance, m)
	}
}

func (s *Store) AddTasks(orgID uuid.UUID, tasks ...core.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, t := range tasks {
		t.OrgID = orgID
		d.tasks = append(d.tasks, t)
	}
}

func (s *Store) AddMessages(orgID uuid.UUID, messages ...core.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, m := range messages {
		m.OrgID = orgID
		d.messages = append(d.messages, m)
	}
}

func (s *Store) AddHouseholdLinks(orgID uuid.UUID, links ...core.HouseholdLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.org(orgID)
	for _, l := range links {
		l.OrgID = orgID
		d.households = append(d.households, l)
	}
}

// AddContribution implements store.ContributionWriter.
func (s *Store) AddContribution(_ context.Context, c core.Contribution) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.AddContributions(c.OrgID, c)
	return c.ID, nil
}

// filter copies the records of one org whose timestamp falls inside window.
func filter[T any](s *Store, orgID uuid.UUID, window *timewindow.Window, pick func(*orgData) []T, at func(T) time.Time) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.orgs[orgID]
	if !ok {
		return nil
	}
	var out []T
	for _, r := range pick(d) {
		if window != nil && !window.Contains(at(r)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) People(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Person, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.Person { return d.people },
		func(p core.Person) time.Time { return p.CreatedAt })
	return store.Valid(ctx, s.logger, core.DomainPeople, out), nil
}

func (s *Store) Contributions(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Contribution, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.Contribution { return d.contributions },
		func(c core.Contribution) time.Time { return c.ReceivedAt })
	return store.Valid(ctx, s.logger, core.DomainContributions, out), nil
}

func (s *Store) Events(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Event, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.Event { return d.events },
		func(e core.Event) time.Time { return e.StartsAt })
	return store.Valid(ctx, s.logger, core.DomainEvents, out), nil
}

func (s *Store) Attendance(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.AttendanceMark, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.AttendanceMark { return d.attendance },
		func(m core.AttendanceMark) time.Time { return m.MarkedAt })
	return store.Valid(ctx, s.logger, core.DomainAttendance, out), nil
}

func (s *Store) Tasks(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Task, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.Task { return d.tasks },
		func(t core.Task) time.Time { return t.CreatedAt })
	return store.Valid(ctx, s.logger, core.DomainTasks, out), nil
}

func (s *Store) Messages(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Message, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.Message { return d.messages },
		func(m core.Message) time.Time { return m.SentAt })
	return store.Valid(ctx, s.logger, core.DomainMessages, out), nil
}

func (s *Store) Households(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.HouseholdLink, error) {
	out := filter(s, orgID, window,
		func(d *orgData) []core.HouseholdLink { return d.households },
		func(l core.HouseholdLink) time.Time { return l.LinkedAt })
	return store.Valid(ctx, s.logger, core.DomainHouseholds, out), nil
}

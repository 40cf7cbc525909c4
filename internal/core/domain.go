package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain names one category of underlying dashboard data.
type Domain string

const (
	DomainPeople        Domain = "people"
	DomainContributions Domain = "contributions"
	DomainEvents        Domain = "events"
	DomainAttendance    Domain = "attendance"
	DomainTasks         Domain = "tasks"
	DomainMessages      Domain = "messages"
	DomainHouseholds    Domain = "households"
	DomainCelebrations  Domain = "celebrations"
)

func (d Domain) String() string { return string(d) }

// Records as handed to reducers. Stores convert their raw rows into these
// types and drop the ones that fail Validate.
type (
	Person struct {
		ID          string
		OrgID       uuid.UUID
		FirstName   string
		LastName    string
		Status      string
		Birthday    *time.Time
		Anniversary *time.Time
		JoinedAt    *time.Time
		CreatedAt   time.Time
	}

	Contribution struct {
		ID         string
		OrgID      uuid.UUID
		PersonID   string
		Amount     decimal.Decimal
		Fund       string
		Method     string
		ReceivedAt time.Time
	}

	Event struct {
		ID       string
		OrgID    uuid.UUID
		Title    string
		Category string
		StartsAt time.Time
		EndsAt   *time.Time
	}

	AttendanceMark struct {
		ID       string
		OrgID    uuid.UUID
		EventID  string
		PersonID string
		Status   string
		MarkedAt time.Time
	}

	Task struct {
		ID          string
		OrgID       uuid.UUID
		Title       string
		Status      string
		Priority    string
		AssigneeID  string
		CreatedAt   time.Time
		DueAt       *time.Time
		CompletedAt *time.Time
	}

	Message struct {
		ID         string
		OrgID      uuid.UUID
		Channel    string
		Status     string
		Recipients int
		SentAt     time.Time
	}

	HouseholdLink struct {
		HouseholdID string
		OrgID       uuid.UUID
		PersonID    string
		Role        string
		LinkedAt    time.Time
	}
)

// FullName joins first and last name, skipping blanks.
func (p Person) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return malformed(DomainPeople, p.ID, "id", "empty")
	}
	if p.CreatedAt.IsZero() {
		return malformed(DomainPeople, p.ID, "created_at", "missing timestamp")
	}
	return nil
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return malformed(DomainContributions, c.ID, "id", "empty")
	}
	if c.ReceivedAt.IsZero() {
		return malformed(DomainContributions, c.ID, "received_at", "missing timestamp")
	}
	if !c.Amount.IsPositive() {
		return malformed(DomainContributions, c.ID, "amount", ErrInvalidAmount.Error())
	}
	return nil
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return malformed(DomainEvents, e.ID, "id", "empty")
	}
	if e.StartsAt.IsZero() {
		return malformed(DomainEvents, e.ID, "starts_at", "missing timestamp")
	}
	return nil
}

func (a AttendanceMark) Validate() error {
	if strings.TrimSpace(a.EventID) == "" {
		return malformed(DomainAttendance, a.ID, "event_id", "empty")
	}
	if strings.TrimSpace(a.PersonID) == "" {
		return malformed(DomainAttendance, a.ID, "person_id", "empty")
	}
	if a.MarkedAt.IsZero() {
		return malformed(DomainAttendance, a.ID, "marked_at", "missing timestamp")
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return malformed(DomainTasks, t.ID, "id", "empty")
	}
	if t.CreatedAt.IsZero() {
		return malformed(DomainTasks, t.ID, "created_at", "missing timestamp")
	}
	return nil
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return malformed(DomainMessages, m.ID, "id", "empty")
	}
	if m.SentAt.IsZero() {
		return malformed(DomainMessages, m.ID, "sent_at", "missing timestamp")
	}
	if m.Recipients < 0 {
		return malformed(DomainMessages, m.ID, "recipients", "negative")
	}
	return nil
}

func (h HouseholdLink) Validate() error {
	if strings.TrimSpace(h.HouseholdID) == "" {
		return malformed(DomainHouseholds, h.PersonID, "household_id", "empty")
	}
	if strings.TrimSpace(h.PersonID) == "" {
		return malformed(DomainHouseholds, h.HouseholdID, "person_id", "empty")
	}
	return nil
}

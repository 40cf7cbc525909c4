// Package sqlq holds the squirrel query builders shared by the SQL record
// stores. Dialect differences (placeholders, how org ids and timestamps are
// bound) are supplied by the caller through Dialect.
package sqlq

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"flock/internal/core"
	"flock/internal/timewindow"
)

// Dialect adapts the builders to one database.
type Dialect struct {
	Placeholder sq.PlaceholderFormat
	// Org converts an organization id into a bind argument.
	Org func(uuid.UUID) any
	// Time converts a timestamp into a bind argument.
	Time func(time.Time) any
	// Amount wraps the amount column so it scans as text.
	Amount string
}

// Table describes one domain table.
type Table struct {
	Name       string
	Columns    []string
	TimeColumn string
	OrderBy    []string
}

var (
	People = Table{
		Name:       "people",
		Columns:    []string{"id", "first_name", "last_name", "status", "birthday", "anniversary", "joined_at", "created_at"},
		TimeColumn: "created_at",
		OrderBy:    []string{"created_at", "id"},
	}
	Contributions = Table{
		Name:       "contributions",
		Columns:    []string{"id", "person_id", "amount", "fund", "method", "received_at"},
		TimeColumn: "received_at",
		OrderBy:    []string{"received_at", "id"},
	}
	Events = Table{
		Name:       "events",
		Columns:    []string{"id", "title", "category", "starts_at", "ends_at"},
		TimeColumn: "starts_at",
		OrderBy:    []string{"starts_at", "id"},
	}
	Attendance = Table{
		Name:       "attendance",
		Columns:    []string{"id", "event_id", "person_id", "status", "marked_at"},
		TimeColumn: "marked_at",
		OrderBy:    []string{"marked_at", "id"},
	}
	Tasks = Table{
		Name:       "tasks",
		Columns:    []string{"id", "title", "status", "priority", "assignee_id", "created_at", "due_at", "completed_at"},
		TimeColumn: "created_at",
		OrderBy:    []string{"created_at", "id"},
	}
	Messages = Table{
		Name:       "messages",
		Columns:    []string{"id", "channel", "status", "recipients", "sent_at"},
		TimeColumn: "sent_at",
		OrderBy:    []string{"sent_at", "id"},
	}
	Households = Table{
		Name:       "household_links",
		Columns:    []string{"household_id", "person_id", "role", "linked_at"},
		TimeColumn: "linked_at",
		OrderBy:    []string{"linked_at", "household_id", "person_id"},
	}
)

// Tables lists every domain table with the domain it serves.
var Tables = map[core.Domain]Table{
	core.DomainPeople:        People,
	core.DomainContributions: Contributions,
	core.DomainEvents:        Events,
	core.DomainAttendance:    Attendance,
	core.DomainTasks:         Tasks,
	core.DomainMessages:      Messages,
	core.DomainHouseholds:    Households,
}

// Select builds the read query for one org, optionally bounded by window
// on the table's time column.
func (d Dialect) Select(t Table, orgID uuid.UUID, window *timewindow.Window) sq.SelectBuilder {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if c == "amount" && d.Amount != "" {
			c = d.Amount
		}
		cols[i] = c
	}
	b := sq.Select(cols...).
		From(t.Name).
		Where(sq.Eq{"org_id": d.Org(orgID)}).
		OrderBy(t.OrderBy...).
		PlaceholderFormat(d.Placeholder)
	if window != nil {
		b = b.Where(sq.GtOrEq{t.TimeColumn: d.Time(window.Start)}).
			Where(sq.LtOrEq{t.TimeColumn: d.Time(window.End)})
	}
	return b
}

// InsertContribution builds the insert for one gift. The amount is bound as
// its exact decimal string.
func (d Dialect) InsertContribution(c core.Contribution) sq.InsertBuilder {
	return sq.Insert(Contributions.Name).
		Columns("id", "org_id", "person_id", "amount", "fund", "method", "received_at").
		Values(c.ID, d.Org(c.OrgID), c.PersonID, c.Amount.String(), c.Fund, c.Method, d.Time(c.ReceivedAt)).
		PlaceholderFormat(d.Placeholder)
}

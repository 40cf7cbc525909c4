// Package sqlite is the SQLite record store. Timestamps are stored as unix
// seconds (UTC) and amounts as exact decimal text.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/store"
	"flock/internal/store/sqlq"
	"flock/internal/timewindow"

	_ "modernc.org/sqlite"
)

var dialect = sqlq.Dialect{
	Placeholder: sq.Question,
	Org:         func(id uuid.UUID) any { return id.String() },
	Time:        func(t time.Time) any { return t.Unix() },
}

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}
	return &Repository{db: db, logger: logger.WithComponent(log.ComponentStore)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the handle for seeding and maintenance tools.
func (r *Repository) DB() *sql.DB { return r.db }

func query[T any](ctx context.Context, r *Repository, t sqlq.Table, orgID uuid.UUID, window *timewindow.Window, scan func(*sql.Rows) (T, error)) ([]T, error) {
	q, args, err := dialect.Select(t, orgID, window).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.Name, err)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.Name, err)
	}
	return out, nil
}

func fromUnix(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

func fromNull(v sql.NullInt64) *time.Time {
	if !v.Valid || v.Int64 == 0 {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func (r *Repository) People(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Person, error) {
	out, err := query(ctx, r, sqlq.People, orgID, window, func(rows *sql.Rows) (core.Person, error) {
		var p core.Person
		var birthday, anniversary, joined sql.NullInt64
		var created int64
		err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Status, &birthday, &anniversary, &joined, &created)
		p.OrgID = orgID
		p.Birthday, p.Anniversary, p.JoinedAt = fromNull(birthday), fromNull(anniversary), fromNull(joined)
		p.CreatedAt = fromUnix(created)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainPeople, out), nil
}

func (r *Repository) Contributions(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Contribution, error) {
	out, err := query(ctx, r, sqlq.Contributions, orgID, window, func(rows *sql.Rows) (core.Contribution, error) {
		var c core.Contribution
		var amount string
		var received int64
		if err := rows.Scan(&c.ID, &c.PersonID, &amount, &c.Fund, &c.Method, &received); err != nil {
			return c, err
		}
		c.OrgID = orgID
		c.ReceivedAt = fromUnix(received)
		// Unparseable amounts stay zero and are quarantined below.
		c.Amount, _ = decimal.NewFromString(amount)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainContributions, out), nil
}

func (r *Repository) Events(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Event, error) {
	out, err := query(ctx, r, sqlq.Events, orgID, window, func(rows *sql.Rows) (core.Event, error) {
		var e core.Event
		var starts int64
		var ends sql.NullInt64
		err := rows.Scan(&e.ID, &e.Title, &e.Category, &starts, &ends)
		e.OrgID = orgID
		e.StartsAt = fromUnix(starts)
		e.EndsAt = fromNull(ends)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainEvents, out), nil
}

func (r *Repository) Attendance(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.AttendanceMark, error) {
	out, err := query(ctx, r, sqlq.Attendance, orgID, window, func(rows *sql.Rows) (core.AttendanceMark, error) {
		var m core.AttendanceMark
		var marked int64
		err := rows.Scan(&m.ID, &m.EventID, &m.PersonID, &m.Status, &marked)
		m.OrgID = orgID
		m.MarkedAt = fromUnix(marked)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainAttendance, out), nil
}

func (r *Repository) Tasks(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Task, error) {
	out, err := query(ctx, r, sqlq.Tasks, orgID, window, func(rows *sql.Rows) (core.Task, error) {
		var t core.Task
		var created int64
		var due, completed sql.NullInt64
		err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.AssigneeID, &created, &due, &completed)
		t.OrgID = orgID
		t.CreatedAt = fromUnix(created)
		t.DueAt, t.CompletedAt = fromNull(due), fromNull(completed)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainTasks, out), nil
}

func (r *Repository) Messages(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Message, error) {
	out, err := query(ctx, r, sqlq.Messages, orgID, window, func(rows *sql.Rows) (core.Message, error) {
		var m core.Message
		var sent int64
		err := rows.Scan(&m.ID, &m.Channel, &m.Status, &m.Recipients, &sent)
		m.OrgID = orgID
		m.SentAt = fromUnix(sent)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainMessages, out), nil
}

func (r *Repository) Households(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.HouseholdLink, error) {
	out, err := query(ctx, r, sqlq.Households, orgID, window, func(rows *sql.Rows) (core.HouseholdLink, error) {
		var l core.HouseholdLink
		var linked int64
		err := rows.Scan(&l.HouseholdID, &l.PersonID, &l.Role, &linked)
		l.OrgID = orgID
		l.LinkedAt = fromUnix(linked)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainHouseholds, out), nil
}

// AddContribution implements store.ContributionWriter.
func (r *Repository) AddContribution(ctx context.Context, c core.Contribution) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	q, args, err := dialect.InsertContribution(c).ToSql()
	if err != nil {
		return "", fmt.Errorf("build contribution insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return "", fmt.Errorf("insert contribution: %w", err)
	}

	r.logger.InfoContext(ctx, "Contribution saved to SQLite",
		log.FieldRecordID, c.ID,
		log.FieldOrgID, c.OrgID.String(),
		log.FieldAmountCents, core.MoneyFromDecimal(c.Amount).Cents)

	return c.ID, nil
}

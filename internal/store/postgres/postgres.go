// Package postgres is the PostgreSQL record store. Organization ids are
// native UUID columns, timestamps are timestamptz and amounts NUMERIC,
// scanned back as text so no precision is lost.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/log"
	"flock/internal/store"
	"flock/internal/store/sqlq"
	"flock/internal/timewindow"
)

var dialect = sqlq.Dialect{
	Placeholder: sq.Dollar,
	Org:         func(id uuid.UUID) any { return id },
	Time:        func(t time.Time) any { return t },
	Amount:      "amount::text",
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

type Repository struct {
	q      Querier
	logger *log.Logger
}

var _ store.Store = (*Repository)(nil)

func New(q Querier, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Discard()
	}
	return &Repository{q: q, logger: logger.WithComponent(log.ComponentStore)}
}

func query[T any](ctx context.Context, r *Repository, t sqlq.Table, orgID uuid.UUID, window *timewindow.Window, scan func(pgx.Rows) (T, error)) ([]T, error) {
	q, args, err := dialect.Select(t, orgID, window).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.Name, err)
	}
	rows, err := r.q.Query(ctx, q, args...)
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

func (r *Repository) People(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Person, error) {
	out, err := query(ctx, r, sqlq.People, orgID, window, func(rows pgx.Rows) (core.Person, error) {
		p := core.Person{OrgID: orgID}
		err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Status, &p.Birthday, &p.Anniversary, &p.JoinedAt, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainPeople, out), nil
}

func (r *Repository) Contributions(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Contribution, error) {
	out, err := query(ctx, r, sqlq.Contributions, orgID, window, func(rows pgx.Rows) (core.Contribution, error) {
		c := core.Contribution{OrgID: orgID}
		var amount string
		if err := rows.Scan(&c.ID, &c.PersonID, &amount, &c.Fund, &c.Method, &c.ReceivedAt); err != nil {
			return c, err
		}
		c.Amount, _ = decimal.NewFromString(amount)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainContributions, out), nil
}

func (r *Repository) Events(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Event, error) {
	out, err := query(ctx, r, sqlq.Events, orgID, window, func(rows pgx.Rows) (core.Event, error) {
		e := core.Event{OrgID: orgID}
		err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.StartsAt, &e.EndsAt)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainEvents, out), nil
}

func (r *Repository) Attendance(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.AttendanceMark, error) {
	out, err := query(ctx, r, sqlq.Attendance, orgID, window, func(rows pgx.Rows) (core.AttendanceMark, error) {
		m := core.AttendanceMark{OrgID: orgID}
		err := rows.Scan(&m.ID, &m.EventID, &m.PersonID, &m.Status, &m.MarkedAt)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainAttendance, out), nil
}

func (r *Repository) Tasks(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Task, error) {
	out, err := query(ctx, r, sqlq.Tasks, orgID, window, func(rows pgx.Rows) (core.Task, error) {
		t := core.Task{OrgID: orgID}
		err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.AssigneeID, &t.CreatedAt, &t.DueAt, &t.CompletedAt)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainTasks, out), nil
}

func (r *Repository) Messages(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Message, error) {
	out, err := query(ctx, r, sqlq.Messages, orgID, window, func(rows pgx.Rows) (core.Message, error) {
		m := core.Message{OrgID: orgID}
		err := rows.Scan(&m.ID, &m.Channel, &m.Status, &m.Recipients, &m.SentAt)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return store.Valid(ctx, r.logger, core.DomainMessages, out), nil
}

func (r *Repository) Households(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.HouseholdLink, error) {
	out, err := query(ctx, r, sqlq.Households, orgID, window, func(rows pgx.Rows) (core.HouseholdLink, error) {
		l := core.HouseholdLink{OrgID: orgID}
		err := rows.Scan(&l.HouseholdID, &l.PersonID, &l.Role, &l.LinkedAt)
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
	if _, err := r.q.Exec(ctx, q, args...); err != nil {
		return "", mapError(err, c.ID)
	}

	r.logger.InfoContext(ctx, "Contribution saved to PostgreSQL",
		log.FieldRecordID, c.ID,
		log.FieldOrgID, c.OrgID.String(),
		log.FieldAmountCents, core.MoneyFromDecimal(c.Amount).Cents)

	return c.ID, nil
}

// ErrDuplicate is returned when a contribution id is already taken in the org.
var ErrDuplicate = errors.New("duplicate record")

func mapError(err error, id string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("insert contribution %s: %w", id, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("insert contribution %s: %w", id, ErrDuplicate)
		case "22P02", "22003": // invalid_text_representation, numeric_value_out_of_range
			return fmt.Errorf("insert contribution %s: %w", id, core.ErrInvalidAmount)
		}
	}
	return fmt.Errorf("insert contribution %s: %w", id, err)
}

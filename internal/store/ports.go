// Package store defines the data-store boundary the dashboard reads from.
//
// Adapters (memory, sqlite, postgres, sheets) convert their raw rows into
// typed core records and quarantine the ones that fail validation, so
// everything past this boundary can trust record shape.
package store

import (
	"context"

	"github.com/google/uuid"

	"flock/internal/core"
	"flock/internal/timewindow"
)

// Ports for outbound adapters. A nil window means all-time; otherwise only
// records whose domain timestamp lies inside it are returned.
type (
	RecordStore interface {
		People(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Person, error)
		Contributions(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Contribution, error)
		Events(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Event, error)
		Attendance(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.AttendanceMark, error)
		Tasks(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Task, error)
		Messages(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.Message, error)
		Households(ctx context.Context, orgID uuid.UUID, window *timewindow.Window) ([]core.HouseholdLink, error)
	}

	// ContributionWriter records a gift and returns its id.
	ContributionWriter interface {
		AddContribution(ctx context.Context, c core.Contribution) (id string, err error)
	}

	// Store is what a backend provides.
	Store interface {
		RecordStore
		ContributionWriter
	}
)

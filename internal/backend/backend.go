// Package backend picks the record store a deployment reads from.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flock/internal/config"
	"flock/internal/store"
)

// Backend is the record store the dashboard reads from and the
// contribution service writes to.
type Backend = store.Store

// Type names one store implementation, as spelled in DATA_BACKEND.
type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
	Sheets   Type = "sheets"
)

func (t Type) String() string { return string(t) }

// Types lists every supported backend in preference order.
func Types() []Type { return []Type{Memory, SQLite, Postgres, Sheets} }

func (t Type) IsValid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Result is a ready store plus the function that releases it. Cleanup is
// nil when there is nothing to release.
type Result struct {
	Backend Backend
	Cleanup func() error
}

type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

type Config struct {
	Type Type

	SQLiteDBPath string
	Database     config.DatabaseConfig

	GoogleSpreadsheetID   string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// DemoOrgID seeds the memory store; it is also the fallback org for
	// requests that name none.
	DemoOrgID uuid.UUID
	Now       func() time.Time
}

// FromAppConfig narrows the process config to what the factory needs.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	t := Type(app.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}

	cfg := Config{
		Type:                  t,
		SQLiteDBPath:          app.SQLiteDBPath,
		Database:              app.Database,
		GoogleSpreadsheetID:   app.GoogleSpreadsheetID,
		GoogleCredentialsFile: app.GoogleCredentialsFile,
		GoogleCredentialsJSON: app.GoogleCredentialsJSON,
	}
	if app.DemoOrgID != "" {
		id, err := uuid.Parse(app.DemoOrgID)
		if err != nil {
			return Config{}, fmt.Errorf("invalid demo org id: %w", err)
		}
		cfg.DemoOrgID = id
	}
	return cfg, nil
}

// Validate reports every missing setting for the selected type at once.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	var errs []error
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
		}
	case Postgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database DSN is required for postgres backend"))
		}
	case Sheets:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("Google Spreadsheet ID is required for sheets backend"))
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errs = append(errs, errors.New("either GoogleCredentialsFile or GoogleCredentialsJSON must be provided for sheets backend"))
		}
	}
	return errors.Join(errs...)
}

package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"flock/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	org := uuid.New()
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "postgres",
		DemoOrgID:    org.String(),
		SQLiteDBPath: "./x.db",
		Database:     config.DatabaseConfig{DSN: "postgres://localhost/flock", MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != Postgres {
		t.Errorf("Type = %s", cfg.Type)
	}
	if cfg.DemoOrgID != org {
		t.Errorf("DemoOrgID = %s", cfg.DemoOrgID)
	}
	if cfg.Database.MaxConns != 4 {
		t.Errorf("Database.MaxConns = %d", cfg.Database.MaxConns)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "csv"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: Memory}, ""},
		{"sqlite without path", Config{Type: SQLite}, "SQLite database path is required"},
		{"postgres without dsn", Config{Type: Postgres}, "database DSN is required"},
		{"sheets without id", Config{Type: Sheets, GoogleCredentialsJSON: "{}"}, "Spreadsheet ID is required"},
		{"sheets without credentials", Config{Type: Sheets, GoogleSpreadsheetID: "abc"}, "GoogleCredentialsFile or GoogleCredentialsJSON"},
		{"unknown", Config{Type: "redis"}, "invalid backend type: redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_MemorySeedsDemoOrg(t *testing.T) {
	org := uuid.New()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:      Memory,
		DemoOrgID: org,
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if res.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}
	people, err := res.Backend.People(context.Background(), org, nil)
	if err != nil {
		t.Fatalf("People() error = %v", err)
	}
	if len(people) == 0 {
		t.Fatal("expected demo people for the seeded org")
	}
	other, _ := res.Backend.People(context.Background(), uuid.New(), nil)
	if len(other) != 0 {
		t.Fatal("other orgs must stay empty")
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "flock.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if res.Cleanup == nil {
		t.Fatal("sqlite backend must provide cleanup")
	}
	defer res.Cleanup()

	gifts, err := res.Backend.Contributions(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Contributions() error = %v", err)
	}
	if len(gifts) != 0 {
		t.Fatalf("expected empty store, got %d", len(gifts))
	}
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: Postgres})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTypes(t *testing.T) {
	names := make([]string, 0, len(Types()))
	for _, typ := range Types() {
		if _, ok := constructors[typ]; !ok {
			t.Errorf("no constructor for %s", typ)
		}
		names = append(names, typ.String())
	}
	if got := strings.Join(names, ","); got != "memory,sqlite,postgres,sheets" {
		t.Errorf("Types() = %s", got)
	}
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	err := Config{Type: Sheets}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"Spreadsheet ID", "GoogleCredentialsFile"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

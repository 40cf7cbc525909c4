package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flock/internal/log"
	"flock/internal/store/memory"
	"flock/internal/store/postgres"
	"flock/internal/store/sheets"
	"flock/internal/store/sqlite"
)

type constructor func(ctx context.Context, cfg Config, logger *log.Logger) (*Result, error)

var constructors = map[Type]constructor{
	Memory:   newMemory,
	SQLite:   newSQLite,
	Postgres: newPostgres,
	Sheets:   newSheets,
}

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend validates cfg and builds the selected store.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	build, ok := constructors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
	res, err := build(ctx, cfg, f.logger)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", cfg.Type, err)
	}
	f.logger.Info("Backend ready", log.FieldBackend, cfg.Type.String())
	return res, nil
}

func newMemory(_ context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	st := memory.New(logger)
	if cfg.DemoOrgID != uuid.Nil {
		now := cfg.Now
		if now == nil {
			now = time.Now
		}
		st.Seed(cfg.DemoOrgID, now())
		logger.Info("Seeded memory backend with demo data", log.FieldOrgID, cfg.DemoOrgID.String())
	}
	return &Result{Backend: st}, nil
}

func newSQLite(_ context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Result{Backend: repo, Cleanup: repo.Close}, nil
}

func newPostgres(ctx context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := postgres.RunMigrations(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Result{
		Backend: postgres.New(pool, logger),
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func newSheets(ctx context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Result{Backend: cli}, nil
}

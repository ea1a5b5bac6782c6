package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/taskdog/taskdog/internal/backoff"
	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/repository"
	"github.com/taskdog/taskdog/internal/repository/postgres"
	"github.com/taskdog/taskdog/internal/repository/sqlite"
)

// openRepository opens the TaskRepository selected by cfg.Storage. The
// returned closer is nil for the in-memory driver. Postgres connects
// through an exponential backoff retrier (the database may still be
// starting up when taskdog is, e.g. in a compose stack).
func openRepository(ctx context.Context, cfg *config.Config) (repository.TaskRepository, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return repository.NewMemory(), nil, nil

	case config.StorageSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case config.StoragePostgres:
		var repo *postgres.Repository
		base := backoff.NewExponentialBackoffPolicy(200 * time.Millisecond)
		base.MaxRetries = 5
		retrier := backoff.NewRetrier(backoff.WithJitter(base, backoff.FullJitter))
		for {
			r, err := postgres.Open(ctx, cfg.PostgresDSN)
			if err == nil {
				repo = r
				break
			}
			logger.Warn(ctx, "postgres connect failed, retrying", "error", err)
			if waitErr := retrier.Next(ctx, err); waitErr != nil {
				return nil, nil, fmt.Errorf("storage: connect to postgres: %w", err)
			}
		}
		return repo, func() error { repo.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage)
	}
}

// migrationsDB opens a database/sql connection suitable for running
// internal/repository/migrations against cfg's storage driver. Memory
// storage has no schema and returns a nil db.
func migrationsDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return nil, nil
	case config.StorageSQLite:
		return sql.Open("sqlite", cfg.SQLitePath)
	case config.StoragePostgres:
		return sql.Open("pgx", cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage)
	}
}

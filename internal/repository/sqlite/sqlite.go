// Package sqlite implements repository.TaskRepository over an
// embedded modernc.org/sqlite database, for single-user/offline
// deployments that do not run a Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/repository"
	"github.com/taskdog/taskdog/internal/task"
)

// Repository is a repository.TaskRepository backed by a local SQLite
// file (or ":memory:" for tests).
type Repository struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at dsn. The
// caller must have already run the migrations in
// internal/repository/migrations against dsn.
func Open(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

var _ repository.TaskRepository = (*Repository)(nil)

const selectColumns = `id, name, description, priority, status, archived, recurrence,
	planned_start, planned_end, deadline, estimated_duration, is_fixed,
	actual_start, actual_end, tags_json, depends_on_json, daily_allocations_json,
	actual_daily_hours_json, created_at, updated_at`

func (r *Repository) GetAll(ctx context.Context) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all: %w", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repository) SaveAll(ctx context.Context, tasks []*task.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: save all begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		if err := upsert(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: save all commit: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, t *task.Task) error {
	return upsert(ctx, r.db, t)
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	if n == 0 {
		return errs.NewNotFound(id)
	}
	return nil
}

func (r *Repository) GenerateNextID(ctx context.Context) (int, error) {
	var maxID sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM tasks`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("sqlite: generate next id: %w", err)
	}
	return int(maxID.Int64) + 1, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, e execer, t *task.Task) error {
	row, err := repository.ToRow(t)
	if err != nil {
		return fmt.Errorf("sqlite: encode task %d: %w", t.ID, err)
	}
	_, err = e.ExecContext(ctx, `
		INSERT INTO tasks (
			id, name, description, priority, status, archived, recurrence,
			planned_start, planned_end, deadline, estimated_duration, is_fixed,
			actual_start, actual_end, tags_json, depends_on_json,
			daily_allocations_json, actual_daily_hours_json, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, description=excluded.description, priority=excluded.priority,
			status=excluded.status, archived=excluded.archived, recurrence=excluded.recurrence,
			planned_start=excluded.planned_start, planned_end=excluded.planned_end,
			deadline=excluded.deadline, estimated_duration=excluded.estimated_duration,
			is_fixed=excluded.is_fixed, actual_start=excluded.actual_start,
			actual_end=excluded.actual_end, tags_json=excluded.tags_json,
			depends_on_json=excluded.depends_on_json,
			daily_allocations_json=excluded.daily_allocations_json,
			actual_daily_hours_json=excluded.actual_daily_hours_json,
			updated_at=excluded.updated_at`,
		row.ID, row.Name, row.Description, row.Priority, row.Status, row.Archived, row.Recurrence,
		row.PlannedStart, row.PlannedEnd, row.Deadline, row.EstimatedDuration, row.IsFixed,
		row.ActualStart, row.ActualEnd, row.TagsJSON, row.DependsOnJSON,
		row.DailyAllocJSON, row.ActualHoursJSON, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert task %d: %w", t.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var row repository.Row
	if err := s.Scan(
		&row.ID, &row.Name, &row.Description, &row.Priority, &row.Status, &row.Archived, &row.Recurrence,
		&row.PlannedStart, &row.PlannedEnd, &row.Deadline, &row.EstimatedDuration, &row.IsFixed,
		&row.ActualStart, &row.ActualEnd, &row.TagsJSON, &row.DependsOnJSON,
		&row.DailyAllocJSON, &row.ActualHoursJSON, &row.CreatedAt, &row.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t, err := repository.FromRow(row)
	if err != nil {
		return nil, &errs.CorruptedDataError{Details: fmt.Sprintf("task %d: %v", row.ID, err)}
	}
	return t, nil
}

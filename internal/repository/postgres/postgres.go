// Package postgres implements repository.TaskRepository over
// PostgreSQL via pgx/v5, the multi-user/server deployment of Taskdog's
// storage layer.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/repository"
	"github.com/taskdog/taskdog/internal/task"
)

// Repository is a repository.TaskRepository backed by a pgxpool.Pool.
type Repository struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and returns a ready Repository. The caller must
// have already run the migrations in internal/repository/migrations
// against the target database.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() { r.pool.Close() }

var _ repository.TaskRepository = (*Repository)(nil)

const selectColumns = `id, name, description, priority, status, archived, recurrence,
	planned_start, planned_end, deadline, estimated_duration, is_fixed,
	actual_start, actual_end, tags_json, depends_on_json, daily_allocations_json,
	actual_daily_hours_json, created_at, updated_at`

func (r *Repository) GetAll(ctx context.Context) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: get all: %w", err)
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
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repository) SaveAll(ctx context.Context, tasks []*task.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: save all begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range tasks {
		if err := upsert(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: save all commit: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, t *task.Task) error {
	return upsert(ctx, r.pool, t)
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFound(id)
	}
	return nil
}

func (r *Repository) GenerateNextID(ctx context.Context) (int, error) {
	var nextVal int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM tasks`).Scan(&nextVal); err != nil {
		return 0, fmt.Errorf("postgres: generate next id: %w", err)
	}
	return int(nextVal), nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, letting
// upsert serve both Create (pool) and SaveAll (transaction).
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsert(ctx context.Context, pool execer, t *task.Task) error {
	row, err := repository.ToRow(t)
	if err != nil {
		return fmt.Errorf("postgres: encode task %d: %w", t.ID, err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO tasks (
			id, name, description, priority, status, archived, recurrence,
			planned_start, planned_end, deadline, estimated_duration, is_fixed,
			actual_start, actual_end, tags_json, depends_on_json,
			daily_allocations_json, actual_daily_hours_json, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO UPDATE SET
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
		return fmt.Errorf("postgres: upsert task %d: %w", t.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*task.Task, error) {
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

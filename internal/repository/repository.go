// Package repository defines the TaskRepository collaborator (spec.md
// §6) and a dependency-free in-memory implementation used by the core
// service's tests and by offline/single-process deployments. The
// durable drivers (internal/repository/sqlite,
// internal/repository/postgres) implement the same interface.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
)

// TaskRepository is the core's sole persistence collaborator.
// Durability and id uniqueness are its responsibility (spec.md §6).
type TaskRepository interface {
	GetAll(ctx context.Context) ([]*task.Task, error)
	GetByID(ctx context.Context, id int) (*task.Task, error)
	SaveAll(ctx context.Context, tasks []*task.Task) error
	Create(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id int) error
	GenerateNextID(ctx context.Context) (int, error)
}

// Memory is an in-process TaskRepository, safe for concurrent use.
// Every returned task is a deep copy so callers cannot mutate the
// store's state except through SaveAll/Create/Delete.
type Memory struct {
	mu     sync.Mutex
	tasks  map[int]*task.Task
	nextID int
}

// NewMemory returns an empty Memory repository.
func NewMemory() *Memory {
	return &Memory{tasks: map[int]*task.Task{}, nextID: 1}
}

func (m *Memory) GetAll(_ context.Context) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, id int) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, errs.NewNotFound(id)
	}
	return t.Clone(), nil
}

func (m *Memory) SaveAll(_ context.Context, tasks []*task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.tasks[t.ID] = t.Clone()
	}
	return nil
}

func (m *Memory) Create(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t.Clone()
	if t.ID >= m.nextID {
		m.nextID = t.ID + 1
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return errs.NewNotFound(id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) GenerateNextID(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	return id, nil
}

package taskdog

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/task"
)

// CreateTaskInput carries the optional fields accepted at creation
// time, beyond the required name/priority.
type CreateTaskInput struct {
	Description       string
	Deadline          *time.Time
	EstimatedDuration *float64
	Tags              []string
	Recurrence        task.Recurrence
}

// CreateTask allocates the next id from the repository and persists a
// new pending task.
func (s *Service) CreateTask(ctx context.Context, name string, priority int, in CreateTaskInput, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.GenerateNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("taskdog: create task: %w", err)
	}
	t := task.New(id, name, priority, s.now())
	t.Description = in.Description
	t.Deadline = in.Deadline
	t.EstimatedDuration = in.EstimatedDuration
	for _, tag := range in.Tags {
		t.AddTag(tag)
	}
	if in.Recurrence != "" {
		t.Recurrence = in.Recurrence
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publishLocked(broadcast.TaskCreated(s.now(), actor.ClientID, actor.UserName, t.ID))
	return t.Clone(), nil
}

// UpdateTask applies a partial field update and broadcasts the set of
// fields that actually changed.
func (s *Service) UpdateTask(ctx context.Context, id int, fields task.UpdateFields, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := t.UpdateFields(fields, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, changed))
	}
	return t.Clone(), nil
}

// transition applies fn to the stored task, persists it, and
// broadcasts a task_status_changed event iff the status actually
// moved.
func (s *Service) transition(ctx context.Context, id int, actor Actor, fn func(*task.Task) error) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := t.Status
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	if t.Status != before {
		s.publishLocked(broadcast.TaskStatusChanged(s.now(), actor.ClientID, actor.UserName, id, string(before), string(t.Status)))
	}
	return t.Clone(), nil
}

func (s *Service) StartTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	return s.transition(ctx, id, actor, func(t *task.Task) error { return t.Start(s.now()) })
}

func (s *Service) PauseTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	return s.transition(ctx, id, actor, func(t *task.Task) error { return t.Pause(s.now()) })
}

func (s *Service) CompleteTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	return s.transition(ctx, id, actor, func(t *task.Task) error { return t.Complete(s.now()) })
}

func (s *Service) CancelTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	return s.transition(ctx, id, actor, func(t *task.Task) error { return t.Cancel(s.now()) })
}

func (s *Service) ReopenTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	return s.transition(ctx, id, actor, func(t *task.Task) error { return t.Reopen(s.now()) })
}

// FixTask pins planned_start/end and daily_allocations, marking the
// task immune to rescheduling.
func (s *Service) FixTask(ctx context.Context, id int, start, end time.Time, allocations map[task.DateKey]float64, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.FixTimes(start, end, allocations, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, []string{"planned_start", "planned_end", "daily_allocations", "is_fixed"}))
	return t.Clone(), nil
}

func (s *Service) UnfixTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Unfix(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, []string{"is_fixed"}))
	return t.Clone(), nil
}

// LogHours records actual hours worked on d.
func (s *Service) LogHours(ctx context.Context, id int, d task.DateKey, hours float64, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.LogHours(d, hours, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, []string{"actual_daily_hours"}))
	return t.Clone(), nil
}

// ArchiveTask soft-deletes a task. If it is a completed recurring
// task, a fresh PENDING successor occurrence is also created
// (SPEC_FULL.md §A′).
func (s *Service) ArchiveTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Archive(s.now()); err != nil {
		return nil, err
	}

	var successor *task.Task
	if t.Recurrence != task.RecurrenceNone && t.Status == task.StatusCompleted {
		nextID, err := s.repo.GenerateNextID(ctx)
		if err != nil {
			return nil, err
		}
		successor = t.SpawnRecurrence(nextID, s.now())
	}

	if successor != nil {
		if err := s.repo.Create(ctx, successor); err != nil {
			return nil, err
		}
		if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
			return nil, err
		}
	} else if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}

	s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, []string{"archived"}))
	if successor != nil {
		s.publishLocked(broadcast.TaskCreated(s.now(), actor.ClientID, actor.UserName, successor.ID))
	}
	return t.Clone(), nil
}

func (s *Service) RestoreTask(ctx context.Context, id int, actor Actor) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Restore(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	s.publishLocked(broadcast.TaskUpdated(s.now(), actor.ClientID, actor.UserName, id, []string{"archived"}))
	return t.Clone(), nil
}

// DeleteTask removes the task and its notes permanently.
func (s *Service) DeleteTask(ctx context.Context, id int, actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.notes != nil {
		if err := s.notes.Delete(id); err != nil {
			return fmt.Errorf("taskdog: delete notes for task %d: %w", id, err)
		}
	}
	s.publishLocked(broadcast.TaskDeleted(s.now(), actor.ClientID, actor.UserName, id))
	return nil
}

// publishLocked publishes event while s.mu is already held, preserving
// the "broadcast order matches commit order" guarantee (spec.md §5).
func (s *Service) publishLocked(event broadcast.Event) {
	s.bus.Publish(event)
}

package task

import (
	"time"

	"github.com/taskdog/taskdog/internal/errs"
)

// UpdateFields is the set of optional field changes accepted by the
// update-fields operation; nil pointers leave the field untouched.
type UpdateFields struct {
	Name              *string
	Description       *string
	Priority          *int
	Deadline          *time.Time
	ClearDeadline     bool
	EstimatedDuration *float64
	Recurrence        *Recurrence
}

func (t *Task) guardMutable(op string) error {
	if t.IsFinished() {
		return &errs.AlreadyFinishedError{TaskID: t.ID, CurrentStatus: string(t.Status)}
	}
	return nil
}

// UpdateFields applies a partial update, refusing to touch a finished
// task and returning the list of field names actually changed (used
// to populate the task_updated broadcast payload).
func (t *Task) UpdateFields(f UpdateFields, now time.Time) ([]string, error) {
	if err := t.guardMutable("update"); err != nil {
		return nil, err
	}
	var changed []string
	if f.Name != nil && *f.Name != t.Name {
		if *f.Name == "" {
			return nil, errs.NewValidation("task name must not be empty")
		}
		t.Name = *f.Name
		changed = append(changed, "name")
	}
	if f.Description != nil && *f.Description != t.Description {
		t.Description = *f.Description
		changed = append(changed, "description")
	}
	if f.Priority != nil && *f.Priority != t.Priority {
		if *f.Priority <= 0 {
			return nil, errs.NewValidation("task priority must be positive")
		}
		t.Priority = *f.Priority
		changed = append(changed, "priority")
	}
	if f.ClearDeadline && t.Deadline != nil {
		t.Deadline = nil
		changed = append(changed, "deadline")
	} else if f.Deadline != nil && (t.Deadline == nil || !t.Deadline.Equal(*f.Deadline)) {
		t.Deadline = f.Deadline
		changed = append(changed, "deadline")
	}
	if f.EstimatedDuration != nil && (t.EstimatedDuration == nil || *t.EstimatedDuration != *f.EstimatedDuration) {
		if *f.EstimatedDuration <= 0 {
			return nil, errs.NewValidation("estimated_duration must be positive when set")
		}
		t.EstimatedDuration = f.EstimatedDuration
		changed = append(changed, "estimated_duration")
	}
	if f.Recurrence != nil && *f.Recurrence != t.Recurrence {
		t.Recurrence = *f.Recurrence
		changed = append(changed, "recurrence")
	}
	if len(changed) > 0 {
		t.UpdatedAt = now
	}
	return changed, nil
}

// Start transitions PENDING -> IN_PROGRESS, setting actual_start.
func (t *Task) Start(now time.Time) error {
	if err := t.guardMutable("start"); err != nil {
		return err
	}
	if t.Status != StatusPending {
		return errs.NewValidation("unknown status transition: %s -> in_progress", t.Status)
	}
	t.Status = StatusInProgress
	t.ActualStart = &now
	t.UpdatedAt = now
	return nil
}

// Pause transitions IN_PROGRESS -> PENDING.
func (t *Task) Pause(now time.Time) error {
	if err := t.guardMutable("pause"); err != nil {
		return err
	}
	if t.Status != StatusInProgress {
		return errs.NewValidation("unknown status transition: %s -> pending", t.Status)
	}
	t.Status = StatusPending
	t.UpdatedAt = now
	return nil
}

// Complete transitions IN_PROGRESS -> COMPLETED, setting actual_end.
func (t *Task) Complete(now time.Time) error {
	if err := t.guardMutable("complete"); err != nil {
		return err
	}
	if t.Status != StatusInProgress {
		return errs.NewValidation("unknown status transition: %s -> completed", t.Status)
	}
	t.Status = StatusCompleted
	t.ActualEnd = &now
	t.UpdatedAt = now
	return nil
}

// Cancel transitions PENDING or IN_PROGRESS -> CANCELED.
func (t *Task) Cancel(now time.Time) error {
	if err := t.guardMutable("cancel"); err != nil {
		return err
	}
	if t.Status != StatusPending && t.Status != StatusInProgress {
		return errs.NewValidation("unknown status transition: %s -> canceled", t.Status)
	}
	t.Status = StatusCanceled
	t.UpdatedAt = now
	return nil
}

// Reopen transitions COMPLETED or CANCELED -> PENDING; disallowed when
// the task is archived.
func (t *Task) Reopen(now time.Time) error {
	if !t.IsFinished() {
		return errs.NewValidation("unknown status transition: %s -> pending (reopen)", t.Status)
	}
	if t.Archived {
		return errs.NewValidation("cannot reopen an archived task")
	}
	t.Status = StatusPending
	t.ActualEnd = nil
	t.UpdatedAt = now
	return nil
}

// FixTimes sets planned_start/end and daily_allocations atomically and
// marks the task is_fixed, making it immune to rescheduling by every
// strategy until unfixed.
func (t *Task) FixTimes(start, end time.Time, allocations map[DateKey]float64, now time.Time) error {
	if err := t.guardMutable("fix-times"); err != nil {
		return err
	}
	if start.After(end) {
		return errs.NewValidation("planned_start must not be after planned_end")
	}
	prevStart, prevEnd, prevAlloc, prevFixed := t.PlannedStart, t.PlannedEnd, t.DailyAllocations, t.IsFixed
	t.PlannedStart, t.PlannedEnd = &start, &end
	if err := t.SetDailyAllocations(allocations); err != nil {
		t.PlannedStart, t.PlannedEnd, t.DailyAllocations, t.IsFixed = prevStart, prevEnd, prevAlloc, prevFixed
		return err
	}
	t.IsFixed = true
	t.UpdatedAt = now
	return nil
}

// Unfix clears the is_fixed flag, allowing strategies to reschedule
// the task again.
func (t *Task) Unfix(now time.Time) error {
	if err := t.guardMutable("unfix"); err != nil {
		return err
	}
	t.IsFixed = false
	t.UpdatedAt = now
	return nil
}

// LogHours records actual hours worked on a calendar date.
func (t *Task) LogHours(d DateKey, hours float64, now time.Time) error {
	if err := t.guardMutable("log-hours"); err != nil {
		return err
	}
	if hours < 0 {
		return errs.NewValidation("logged hours must be nonnegative, got %.2f", hours)
	}
	if t.ActualDailyHours == nil {
		t.ActualDailyHours = map[DateKey]float64{}
	}
	t.ActualDailyHours[d] = hours
	t.UpdatedAt = now
	return nil
}

// Archive soft-deletes the task.
func (t *Task) Archive(now time.Time) error {
	t.Archived = true
	t.UpdatedAt = now
	return nil
}

// Restore clears the archived flag.
func (t *Task) Restore(now time.Time) error {
	t.Archived = false
	t.UpdatedAt = now
	return nil
}

// ClearSchedule drops planned_start/end and daily_allocations, used by
// the optimizer orchestrator when clearing orphan schedules under
// force_override.
func (t *Task) ClearSchedule(now time.Time) {
	t.PlannedStart = nil
	t.PlannedEnd = nil
	t.DailyAllocations = map[DateKey]float64{}
	t.UpdatedAt = now
}

// SpawnRecurrence builds the PENDING successor occurrence for a
// completed recurring task, per SPEC_FULL.md §A′. newID is assigned by
// the caller (typically the repository's id generator).
func (t *Task) SpawnRecurrence(newID int, now time.Time) *Task {
	if t.Recurrence == RecurrenceNone || t.Status != StatusCompleted {
		return nil
	}
	next := New(newID, t.Name, t.Priority, now)
	next.Description = t.Description
	next.Tags = append([]string(nil), t.Tags...)
	next.Recurrence = t.Recurrence
	if t.EstimatedDuration != nil {
		d := *t.EstimatedDuration
		next.EstimatedDuration = &d
	}
	if t.Deadline != nil {
		nextDeadline := advanceRecurrence(*t.Deadline, t.Recurrence)
		next.Deadline = &nextDeadline
	}
	return next
}

func advanceRecurrence(base time.Time, r Recurrence) time.Time {
	switch r {
	case RecurrenceDaily:
		return base.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return base.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return base.AddDate(0, 1, 0)
	default:
		return base
	}
}

// Package task defines the Task entity, its status lifecycle, and the
// invariants every mutator must uphold.
package task

import (
	"sort"
	"time"

	"github.com/taskdog/taskdog/internal/errs"
)

// Status is the task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// Recurrence describes whether archiving a completed task spawns a
// successor occurrence.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Priority bands, per spec.md §3: higher is more important.
const (
	PriorityHighThreshold   = 70
	PriorityMediumThreshold = 30
)

// DateKey is the canonical calendar-date key used by every
// date-to-hours map in the engine. It serializes as "YYYY-MM-DD" at
// the repository/wire boundary and nowhere else (per Design Notes:
// convert only at the boundary).
type DateKey string

// NewDateKey truncates t to its local calendar date.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format("2006-01-02"))
}

// Time parses the key back into a time.Time at local midnight.
func (d DateKey) Time() time.Time {
	t, err := time.ParseInLocation("2006-01-02", string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Before reports whether d is strictly earlier than other.
func (d DateKey) Before(other DateKey) bool { return string(d) < string(other) }

// After reports whether d is strictly later than other.
func (d DateKey) After(other DateKey) bool { return string(d) > string(other) }

// AddDays returns the date n calendar days after d.
func (d DateKey) AddDays(n int) DateKey {
	return NewDateKey(d.Time().AddDate(0, 0, n))
}

// Task is the unit of work scheduled by the optimizer engine.
type Task struct {
	ID          int
	Name        string
	Description string
	Priority    int
	Tags        []string

	Status     Status
	Archived   bool
	Recurrence Recurrence

	PlannedStart      *time.Time
	PlannedEnd        *time.Time
	Deadline          *time.Time
	EstimatedDuration *float64 // hours, >0 when set
	IsFixed           bool

	ActualStart      *time.Time
	ActualEnd        *time.Time
	ActualDailyHours map[DateKey]float64

	DailyAllocations map[DateKey]float64
	DependsOn        map[int]struct{}

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a task with the identity and descriptive fields set,
// defaulting the rest per the lifecycle in spec.md §3.
func New(id int, name string, priority int, now time.Time) *Task {
	return &Task{
		ID:               id,
		Name:             name,
		Priority:         priority,
		Status:           StatusPending,
		Recurrence:       RecurrenceNone,
		ActualDailyHours: map[DateKey]float64{},
		DailyAllocations: map[DateKey]float64{},
		DependsOn:        map[int]struct{}{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsFinished reports whether the task is COMPLETED or CANCELED.
func (t *Task) IsFinished() bool {
	return t.Status == StatusCompleted || t.Status == StatusCanceled
}

// ShouldCountInWorkload reports whether this task's allocations should
// contribute to future ledger seeding: false iff finished or archived.
func (t *Task) ShouldCountInWorkload() bool {
	return !t.IsFinished() && !t.Archived
}

// IsOverdue reports whether the task has a deadline in the past and is
// not yet finished.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && !t.IsFinished() && t.Deadline.Before(now)
}

// ProgressHours sums actual_daily_hours across all logged dates.
func (t *Task) ProgressHours() float64 {
	var total float64
	for _, h := range t.ActualDailyHours {
		total += h
	}
	return total
}

// CompletedAt returns actual_end when the task is COMPLETED.
func (t *Task) CompletedAt() *time.Time {
	if t.Status != StatusCompleted {
		return nil
	}
	return t.ActualEnd
}

// PriorityBand classifies Priority per spec.md §3 convention.
func (t *Task) PriorityBand() string {
	switch {
	case t.Priority >= PriorityHighThreshold:
		return "high"
	case t.Priority >= PriorityMediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

// ValidateSchedulable reports whether the task may be handed to a
// strategy. It fails if the status is finished, the task is archived,
// estimated_duration is missing, or the task is_fixed and
// forceOverride is false.
func (t *Task) ValidateSchedulable(forceOverride bool) error {
	if t.IsFinished() {
		return &errs.NotSchedulableError{TaskID: t.ID, Reason: "task is finished (status=" + string(t.Status) + ")"}
	}
	if t.Archived {
		return &errs.NotSchedulableError{TaskID: t.ID, Reason: "task is archived"}
	}
	if t.EstimatedDuration == nil {
		return &errs.NotSchedulableError{TaskID: t.ID, Reason: "estimated_duration is not set"}
	}
	if t.IsFixed && !forceOverride {
		return &errs.NotSchedulableError{TaskID: t.ID, Reason: "task is fixed and force_override was not requested"}
	}
	return nil
}

// Validate enforces the structural invariants described in spec.md §3
// that must hold regardless of the current operation.
func (t *Task) Validate() error {
	if t.Name == "" {
		return errs.NewValidation("task name must not be empty")
	}
	if t.Priority <= 0 {
		return errs.NewValidation("task priority must be positive")
	}
	if _, self := t.DependsOn[t.ID]; self {
		return errs.NewValidation("task %d cannot depend on itself", t.ID)
	}
	if t.EstimatedDuration != nil && *t.EstimatedDuration <= 0 {
		return errs.NewValidation("estimated_duration must be positive when set")
	}
	if t.Status == StatusInProgress {
		if t.ActualStart == nil {
			return errs.NewValidation("in-progress task %d must have actual_start set", t.ID)
		}
		if t.ActualEnd != nil {
			return errs.NewValidation("in-progress task %d must not have actual_end set", t.ID)
		}
	}
	if t.PlannedStart != nil && t.PlannedEnd != nil && t.PlannedStart.After(*t.PlannedEnd) {
		return errs.NewValidation("task %d planned_start must not be after planned_end", t.ID)
	}
	if t.Deadline != nil && t.PlannedEnd != nil && t.PlannedEnd.After(*t.Deadline) {
		return errs.NewValidation("task %d planned_end exceeds deadline", t.ID)
	}
	if err := t.validateAllocationKeys(t.DailyAllocations); err != nil {
		return err
	}
	if sum := sumAllocations(t.DailyAllocations); t.EstimatedDuration != nil && sum > *t.EstimatedDuration+1e-9 {
		return errs.NewValidation("task %d daily_allocations sum %.2f exceeds estimated_duration %.2f", t.ID, sum, *t.EstimatedDuration)
	}
	return nil
}

func sumAllocations(m map[DateKey]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

func (t *Task) validateAllocationKeys(m map[DateKey]float64) error {
	if t.PlannedStart == nil || t.PlannedEnd == nil {
		if len(m) > 0 {
			return errs.NewValidation("task %d has daily_allocations without a planned window", t.ID)
		}
		return nil
	}
	startKey := NewDateKey(*t.PlannedStart)
	endKey := NewDateKey(*t.PlannedEnd)
	for d := range m {
		if d.Before(startKey) || d.After(endKey) {
			return errs.NewValidation("task %d allocation date %s outside planned window [%s,%s]", t.ID, d, startKey, endKey)
		}
	}
	return nil
}

// SetDailyAllocations replaces the allocation map, rejecting
// nonpositive values and dates outside [planned_start, planned_end].
func (t *Task) SetDailyAllocations(m map[DateKey]float64) error {
	for d, h := range m {
		if h <= 0 {
			return errs.NewValidation("task %d allocation for %s must be positive, got %.2f", t.ID, d, h)
		}
	}
	clone := make(map[DateKey]float64, len(m))
	for k, v := range m {
		clone[k] = v
	}
	if err := t.validateAllocationKeys(clone); err != nil {
		return err
	}
	t.DailyAllocations = clone
	return nil
}

// SortedAllocationDates returns the allocation dates in ascending
// order, used wherever a deterministic iteration is required.
func (t *Task) SortedAllocationDates() []DateKey {
	dates := make([]DateKey, 0, len(t.DailyAllocations))
	for d := range t.DailyAllocations {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Clone returns a deep copy so strategies can operate without
// mutating shared entities (Design Notes: "operate on copies").
func (t *Task) Clone() *Task {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	c.DependsOn = make(map[int]struct{}, len(t.DependsOn))
	for k := range t.DependsOn {
		c.DependsOn[k] = struct{}{}
	}
	c.ActualDailyHours = make(map[DateKey]float64, len(t.ActualDailyHours))
	for k, v := range t.ActualDailyHours {
		c.ActualDailyHours[k] = v
	}
	c.DailyAllocations = make(map[DateKey]float64, len(t.DailyAllocations))
	for k, v := range t.DailyAllocations {
		c.DailyAllocations[k] = v
	}
	if t.PlannedStart != nil {
		v := *t.PlannedStart
		c.PlannedStart = &v
	}
	if t.PlannedEnd != nil {
		v := *t.PlannedEnd
		c.PlannedEnd = &v
	}
	if t.Deadline != nil {
		v := *t.Deadline
		c.Deadline = &v
	}
	if t.EstimatedDuration != nil {
		v := *t.EstimatedDuration
		c.EstimatedDuration = &v
	}
	if t.ActualStart != nil {
		v := *t.ActualStart
		c.ActualStart = &v
	}
	if t.ActualEnd != nil {
		v := *t.ActualEnd
		c.ActualEnd = &v
	}
	return &c
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddTag inserts tag if not already present, preserving set semantics.
func (t *Task) AddTag(tag string) {
	if tag == "" || t.HasTag(tag) {
		return
	}
	t.Tags = append(t.Tags, tag)
}

// RemoveTag deletes tag if present.
func (t *Task) RemoveTag(tag string) {
	out := t.Tags[:0]
	for _, existing := range t.Tags {
		if existing != tag {
			out = append(out, existing)
		}
	}
	t.Tags = out
}

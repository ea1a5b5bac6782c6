package optimizer

import (
	"errors"
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
)

func baseRequest(start task.DateKey) Request {
	return Request{
		Algorithm:           "greedy",
		StartDate:           start,
		MaxHoursPerDay:      6,
		CurrentTime:         mustParse("2025-01-06"),
		DefaultDayStartTime: 9 * time.Hour,
		DefaultDayEndTime:   18 * time.Hour,
	}
}

func TestRunExplicitTaskIDsMustExist(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	req := baseRequest(start)
	req.TaskIDs = []int{99}
	_, err := Run(nil, req)
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v (%T)", err, err)
	}
}

func TestRunExplicitWithNoSchedulableTasks(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	done := &task.Task{ID: 1, Name: "done", Priority: 1, Status: task.StatusCompleted, EstimatedDuration: dur(1)}
	req := baseRequest(start)
	req.TaskIDs = []int{1}
	_, err := Run([]*task.Task{done}, req)
	var noSchedulable *errs.NoSchedulableTasksError
	if !errors.As(err, &noSchedulable) {
		t.Fatalf("expected NoSchedulableTasksError, got %v (%T)", err, err)
	}
}

func TestRunSchedulesImplicitTargets(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(4)}
	req := baseRequest(start)
	out, err := Run([]*task.Task{tk}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Summary.ScheduledCount != 1 {
		t.Fatalf("expected 1 scheduled task, summary=%+v failures=%+v", out.Summary, out.Failed)
	}
	if out.Summary.TotalHoursScheduled != 4.0 {
		t.Fatalf("expected total hours 4.0, got %v", out.Summary.TotalHoursScheduled)
	}
}

// Invariant 5 (spec.md §8): a fixed task is never touched by the
// optimizer, with or without force_override.
func TestRunNeverReschedulesFixedTasks(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	fixedStart := mustParse("2025-01-06").Add(9 * time.Hour)
	fixedEnd := mustParse("2025-01-06").Add(13 * time.Hour)
	fixed := &task.Task{
		ID: 1, Name: "fixed", Priority: 50, EstimatedDuration: dur(4), IsFixed: true,
		PlannedStart: &fixedStart, PlannedEnd: &fixedEnd,
		DailyAllocations: map[task.DateKey]float64{start: 4},
	}
	movable := &task.Task{ID: 2, Name: "movable", Priority: 100, EstimatedDuration: dur(3)}

	req := baseRequest(start)
	req.ForceOverride = true
	out, err := Run([]*task.Task{fixed, movable}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, got := range out.Scheduled {
		if got.ID == fixed.ID {
			t.Fatalf("fixed task must never appear in the scheduled output, got %+v", got)
		}
	}
}

func TestRunClearsOrphanSchedulesUnderForceOverride(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	oldStart := mustParse("2025-01-01").Add(9 * time.Hour)
	oldEnd := mustParse("2025-01-01").Add(10 * time.Hour)
	orphan := &task.Task{
		ID: 1, Name: "orphan", Priority: 100, EstimatedDuration: dur(1000),
		Deadline:         timePtr(mustParse("2025-01-06").Add(10 * time.Hour)),
		PlannedStart:     &oldStart, PlannedEnd: &oldEnd,
		DailyAllocations: map[task.DateKey]float64{task.NewDateKey(oldStart): 1},
	}
	req := baseRequest(start)
	req.ForceOverride = true
	out, err := Run([]*task.Task{orphan}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Summary.ScheduledCount != 0 {
		t.Fatalf("a cleared orphan must not count as scheduled, got summary=%+v", out.Summary)
	}
	found := false
	for _, got := range out.Cleared {
		if got.ID == orphan.ID {
			found = true
			if got.PlannedStart != nil || got.PlannedEnd != nil || len(got.DailyAllocations) != 0 {
				t.Fatalf("expected orphan schedule cleared, got %+v", got)
			}
		}
	}
	if !found {
		t.Fatal("expected the orphaned task to appear in the cleared output with a cleared schedule")
	}
}

package optimizer

import (
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// S3 — Backward packs close to deadline.
func TestBackwardPacksCloseToDeadline(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-10-20")) // Monday
	deadline := mustParse("2025-10-24").Add(18 * time.Hour) // Friday 18:00
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(12), Deadline: &deadline}
	strategy := &BackwardStrategy{defaultHorizonWorkdays: 90}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d (failures=%+v)", len(result.Scheduled), result.Failures)
	}
	got := result.Scheduled[0]
	wantStart := mustParse("2025-10-23").Add(9 * time.Hour)
	wantEnd := mustParse("2025-10-24").Add(18 * time.Hour)
	if !got.PlannedStart.Equal(wantStart) || !got.PlannedEnd.Equal(wantEnd) {
		t.Fatalf("got window [%v,%v], want [%v,%v]", got.PlannedStart, got.PlannedEnd, wantStart, wantEnd)
	}
	thu := task.NewDateKey(mustParse("2025-10-23"))
	fri := task.NewDateKey(mustParse("2025-10-24"))
	if got.DailyAllocations[thu] != 6.0 || got.DailyAllocations[fri] != 6.0 {
		t.Fatalf("unexpected allocations: %+v", got.DailyAllocations)
	}
}

func TestBackwardFailsWhenDeadlineTooClose(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-10-20"))
	deadline := mustParse("2025-10-20").Add(10 * time.Hour)
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(50), Deadline: &deadline}
	strategy := &BackwardStrategy{defaultHorizonWorkdays: 90}
	ledger := workload.New()
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected a failure, got %+v", result)
	}
	mon := task.NewDateKey(mustParse("2025-10-20"))
	if ledger.Reserved(mon) != 0 {
		t.Fatalf("ledger must have no residue after a failed task, got %v", ledger.Reserved(mon))
	}
}

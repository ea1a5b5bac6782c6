package optimizer

import (
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

func dur(h float64) *float64 { return &h }

func baseParams(start task.DateKey) Params {
	return Params{
		StartDate:      start,
		MaxHoursPerDay: 6,
		DayStartTime:   9 * time.Hour,
		DayEndTime:     18 * time.Hour,
	}
}

// S1 — Greedy single task fits in a day.
func TestGreedySingleTaskFitsInDay(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06")) // Monday
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(4)}
	strategy := &GreedyStrategy{defaultHorizonWorkdays: 90}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(result.Scheduled))
	}
	got := result.Scheduled[0]
	wantStart := mustParse("2025-01-06").Add(9 * time.Hour)
	wantEnd := mustParse("2025-01-06").Add(18 * time.Hour)
	if !got.PlannedStart.Equal(wantStart) || !got.PlannedEnd.Equal(wantEnd) {
		t.Fatalf("got window [%v,%v], want [%v,%v]", got.PlannedStart, got.PlannedEnd, wantStart, wantEnd)
	}
	if len(got.DailyAllocations) != 1 || got.DailyAllocations[start] != 4.0 {
		t.Fatalf("unexpected allocations: %+v", got.DailyAllocations)
	}
	if result.DailyAllocationsUsed[start] != 4.0 {
		t.Fatalf("ledger usage: got %v, want 4.0", result.DailyAllocationsUsed[start])
	}
}

// S2 — Greedy spans workdays, skips weekend.
func TestGreedySpansWorkdaysSkipsWeekend(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-10")) // Friday
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(10)}
	strategy := &GreedyStrategy{defaultHorizonWorkdays: 90}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d (failures=%+v)", len(result.Scheduled), result.Failures)
	}
	got := result.Scheduled[0]
	wantStart := mustParse("2025-01-10").Add(9 * time.Hour)
	wantEnd := mustParse("2025-01-13").Add(18 * time.Hour)
	if !got.PlannedStart.Equal(wantStart) || !got.PlannedEnd.Equal(wantEnd) {
		t.Fatalf("got window [%v,%v], want [%v,%v]", got.PlannedStart, got.PlannedEnd, wantStart, wantEnd)
	}
	fri := task.NewDateKey(mustParse("2025-01-10"))
	mon := task.NewDateKey(mustParse("2025-01-13"))
	if got.DailyAllocations[fri] != 6.0 || got.DailyAllocations[mon] != 4.0 {
		t.Fatalf("unexpected allocations: %+v", got.DailyAllocations)
	}
	if len(got.DailyAllocations) != 2 {
		t.Fatalf("weekend dates must not appear: %+v", got.DailyAllocations)
	}
}

func TestGreedyReleasesPartialReservationOnFailure(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06")) // Monday
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(100), Deadline: timePtr(mustParse("2025-01-07"))}
	strategy := &GreedyStrategy{defaultHorizonWorkdays: 90}
	ledger := workload.New()
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 0 || len(result.Failures) != 1 {
		t.Fatalf("expected a single failure, got scheduled=%d failures=%d", len(result.Scheduled), len(result.Failures))
	}
	mon := task.NewDateKey(mustParse("2025-01-06"))
	if ledger.Reserved(mon) != 0 {
		t.Fatalf("ledger must have no residue after a failed task, got %v", ledger.Reserved(mon))
	}
}

func timePtr(t time.Time) *time.Time { return &t }

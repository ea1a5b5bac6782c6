package optimizer

import (
	"testing"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

func TestRoundRobinSplitsCapacityAmongActiveTasks(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06")) // Monday
	t1 := &task.Task{ID: 1, Name: "a", Priority: 100, EstimatedDuration: dur(3)}
	t2 := &task.Task{ID: 2, Name: "b", Priority: 100, EstimatedDuration: dur(3)}
	strategy := &RoundRobinStrategy{defaultHorizonWorkdays: 90, iterationCap: 1000}
	result, err := strategy.Optimize([]*task.Task{t1, t2}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 2 {
		t.Fatalf("expected both tasks scheduled, got %d (failures=%+v)", len(result.Scheduled), result.Failures)
	}
	mon := task.NewDateKey(mustParse("2025-01-06"))
	for _, got := range result.Scheduled {
		if got.DailyAllocations[mon] != 3.0 {
			t.Fatalf("task %d: expected 3.0h on first day from equal split, got %v", got.ID, got.DailyAllocations[mon])
		}
	}
}

func TestRoundRobinFailsWhenIterationCapReached(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	tk := &task.Task{ID: 1, Name: "a", Priority: 100, EstimatedDuration: dur(1000)}
	strategy := &RoundRobinStrategy{defaultHorizonWorkdays: 90, iterationCap: 3}
	ledger := workload.New()
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected a failure when the iteration cap is reached, got %+v", result)
	}
	mon := task.NewDateKey(mustParse("2025-01-06"))
	if ledger.Reserved(mon) != 0 {
		t.Fatalf("ledger must have no residue after a failed task, got %v", ledger.Reserved(mon))
	}
}

package optimizer

import (
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

func TestBalancedSpreadsEvenlyAcrossWorkdays(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06")) // Monday
	deadline := mustParse("2025-01-10").Add(18 * time.Hour) // Friday, 5 workdays inclusive
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(10), Deadline: &deadline}
	strategy := &BalancedStrategy{defaultHorizonWorkdays: 10}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d (failures=%+v)", len(result.Scheduled), result.Failures)
	}
	got := result.Scheduled[0]
	var sum float64
	for _, h := range got.DailyAllocations {
		sum += h
	}
	if diff := sum - 10.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("allocations must sum to estimated_duration, got %v", sum)
	}
	for d, h := range got.DailyAllocations {
		if h > 6.0+Epsilon {
			t.Fatalf("allocation on %s exceeds cap: %v", d, h)
		}
	}
}

func TestBalancedHorizonFloorsAtSevenWorkdays(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(1)}
	strategy := &BalancedStrategy{defaultHorizonWorkdays: 1}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Scheduled) != 1 {
		t.Fatalf("expected 1 scheduled task, got failures=%+v", result.Failures)
	}
}

func TestBalancedFailsWhenNoWorkdaysBeforeDeadline(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-11")) // Saturday
	deadline := mustParse("2025-01-11").Add(18 * time.Hour)
	tk := &task.Task{ID: 1, Name: "t1", Priority: 100, EstimatedDuration: dur(5), Deadline: &deadline}
	strategy := &BalancedStrategy{defaultHorizonWorkdays: 10}
	result, err := strategy.Optimize([]*task.Task{tk}, nil, baseParams(start), workload.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected a failure when the deadline has no workdays, got %+v", result)
	}
}

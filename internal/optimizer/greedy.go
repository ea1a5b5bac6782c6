package optimizer

import (
	"fmt"
	"sort"

	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// GreedyStrategy is the "Earliest First" strategy (spec.md §4.F):
// earliest-fit packing ordered by (deadline, priority).
type GreedyStrategy struct {
	defaultHorizonWorkdays int
}

var _ Strategy = (*GreedyStrategy)(nil)

func (s *GreedyStrategy) Optimize(tasks, _ []*task.Task, params Params, ledger *workload.Ledger) (*Result, error) {
	horizon := s.defaultHorizonWorkdays
	if horizon <= 0 {
		horizon = 90
	}

	ordered := make([]*task.Task, len(tasks))
	copy(ordered, tasks)
	deadlines := make(map[int]task.DateKey, len(ordered))
	for _, t := range ordered {
		deadlines[t.ID] = effectiveDeadline(t, params, horizon)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if deadlines[a.ID] != deadlines[b.ID] {
			return deadlines[a.ID].Before(deadlines[b.ID])
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})

	result := &Result{DailyAllocationsUsed: map[task.DateKey]float64{}}

	for _, original := range ordered {
		t := original.Clone()
		deadline := deadlines[t.ID]
		remaining := *t.EstimatedDuration
		allocations := map[task.DateKey]float64{}
		var firstDay, lastDay task.DateKey
		haveFirst := false

		d := params.StartDate
		for remaining > Epsilon {
			if pastDeadline(d, deadline) {
				result.Failures = append(result.Failures, Failure{
					TaskID: t.ID,
					Reason: fmt.Sprintf("Cannot meet deadline; %.2fh remaining", remaining),
				})
				break
			}
			if !calendar.IsWorkday(d, params.HolidayChecker, params.IncludeAllDays) {
				d = d.AddDays(1)
				continue
			}
			avail := ledger.AvailableOn(d, params.MaxHoursPerDay)
			if avail > Epsilon {
				give := avail
				if remaining < give {
					give = remaining
				}
				allocations[d] += give
				ledger.Reserve(d, give)
				result.DailyAllocationsUsed[d] += give
				remaining -= give
				if !haveFirst {
					firstDay = d
					haveFirst = true
				}
				lastDay = d
			}
			d = d.AddDays(1)
		}

		if remaining <= Epsilon {
			start, end := plannedWindow(firstDay, lastDay, params)
			t.PlannedStart, t.PlannedEnd = &start, &end
			if err := t.SetDailyAllocations(allocations); err != nil {
				result.Failures = append(result.Failures, Failure{TaskID: t.ID, Reason: err.Error()})
				continue
			}
			result.Scheduled = append(result.Scheduled, t)
		} else {
			// Release any partial reservation made before failing so a
			// failed task never leaves residue in the ledger.
			for day, hours := range allocations {
				ledger.Release(day, hours)
				result.DailyAllocationsUsed[day] -= hours
			}
		}
	}

	return result, nil
}

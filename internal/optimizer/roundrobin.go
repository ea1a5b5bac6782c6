package optimizer

import (
	"fmt"
	"sort"

	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// RoundRobinStrategy is the "Parallel Progress" strategy (spec.md
// §4.I): rotates daily capacity among all still-active candidates.
type RoundRobinStrategy struct {
	defaultHorizonWorkdays int
	iterationCap           int
}

var _ Strategy = (*RoundRobinStrategy)(nil)

func (s *RoundRobinStrategy) Optimize(tasks, _ []*task.Task, params Params, ledger *workload.Ledger) (*Result, error) {
	horizon := s.defaultHorizonWorkdays
	if horizon <= 0 {
		horizon = 90
	}
	iterCap := s.iterationCap
	if iterCap <= 0 {
		iterCap = 10000
	}

	byID := make(map[int]*task.Task, len(tasks))
	remaining := make(map[int]float64, len(tasks))
	deadlines := make(map[int]task.DateKey, len(tasks))
	allocations := make(map[int]map[task.DateKey]float64, len(tasks))
	firstDay := make(map[int]task.DateKey, len(tasks))
	lastDay := make(map[int]task.DateKey, len(tasks))
	haveFirst := make(map[int]bool, len(tasks))

	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		clone := t.Clone()
		byID[clone.ID] = clone
		remaining[clone.ID] = *clone.EstimatedDuration
		deadlines[clone.ID] = effectiveDeadline(clone, params, horizon)
		allocations[clone.ID] = map[task.DateKey]float64{}
		ids = append(ids, clone.ID)
	}
	sort.Ints(ids)

	result := &Result{DailyAllocationsUsed: map[task.DateKey]float64{}}

	d := params.StartDate
	for iter := 0; iter < iterCap; iter++ {
		anyRemaining := false
		for _, id := range ids {
			if remaining[id] > Epsilon {
				anyRemaining = true
				break
			}
		}
		if !anyRemaining {
			break
		}

		if !calendar.IsWorkday(d, params.HolidayChecker, params.IncludeAllDays) {
			d = d.AddDays(1)
			continue
		}

		var active []int
		for _, id := range ids {
			if remaining[id] > Epsilon && !d.After(deadlines[id]) {
				active = append(active, id)
			}
		}

		avail := ledger.AvailableOn(d, params.MaxHoursPerDay)
		if avail > Epsilon && len(active) > 0 {
			share := avail / float64(len(active))
			for _, id := range active {
				give := share
				if remaining[id] < give {
					give = remaining[id]
				}
				if give <= 0 {
					continue
				}
				allocations[id][d] += give
				ledger.Reserve(d, give)
				result.DailyAllocationsUsed[d] += give
				remaining[id] -= give
				if !haveFirst[id] {
					firstDay[id] = d
					haveFirst[id] = true
				}
				lastDay[id] = d
			}
		}

		d = d.AddDays(1)
	}

	for _, id := range ids {
		t := byID[id]
		if remaining[id] > Epsilon {
			result.Failures = append(result.Failures, Failure{
				TaskID: id,
				Reason: fmt.Sprintf("Round-robin iteration cap reached; %.2fh remaining", remaining[id]),
			})
			for day, hours := range allocations[id] {
				ledger.Release(day, hours)
				result.DailyAllocationsUsed[day] -= hours
			}
			continue
		}
		start, end := plannedWindow(firstDay[id], lastDay[id], params)
		t.PlannedStart, t.PlannedEnd = &start, &end
		if err := t.SetDailyAllocations(allocations[id]); err != nil {
			result.Failures = append(result.Failures, Failure{TaskID: id, Reason: err.Error()})
			continue
		}
		result.Scheduled = append(result.Scheduled, t)
	}

	return result, nil
}

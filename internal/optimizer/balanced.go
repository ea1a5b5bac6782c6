package optimizer

import (
	"fmt"
	"sort"

	"github.com/taskdog/taskdog/internal/allocation"
	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// BalancedStrategy is the "Equal Distribution" strategy (spec.md
// §4.G): spreads each task's hours evenly across its workdays up to
// its deadline.
type BalancedStrategy struct {
	defaultHorizonWorkdays int
}

var _ Strategy = (*BalancedStrategy)(nil)

func (s *BalancedStrategy) Optimize(tasks, _ []*task.Task, params Params, ledger *workload.Ledger) (*Result, error) {
	horizon := s.defaultHorizonWorkdays
	if horizon < 7 {
		horizon = 7
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
		return a.ID < b.ID
	})

	result := &Result{DailyAllocationsUsed: map[task.DateKey]float64{}}

	for _, original := range ordered {
		t := original.Clone()
		deadline := deadlines[t.ID]
		workdays := calendar.WorkdaysBetween(params.StartDate, deadline, params.HolidayChecker, params.IncludeAllDays)
		remaining := *t.EstimatedDuration

		if len(workdays) == 0 {
			result.Failures = append(result.Failures, Failure{
				TaskID: t.ID,
				Reason: fmt.Sprintf("No workdays available before deadline; %.2fh remaining", remaining),
			})
			continue
		}

		quotaFor := func(days int) float64 {
			if days <= 0 {
				return remaining
			}
			return allocation.CeilToTenth(remaining / float64(days))
		}

		allocations := map[task.DateKey]float64{}
		var firstDay, lastDay task.DateKey
		haveFirst := false
		daysLeft := len(workdays)

		for _, d := range workdays {
			if remaining <= Epsilon {
				break
			}
			quota := quotaFor(daysLeft)
			avail := ledger.AvailableOn(d, params.MaxHoursPerDay)
			give := quota
			if avail < give {
				give = avail
			}
			if remaining < give {
				give = remaining
			}
			if give > Epsilon {
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
			daysLeft--
		}

		if remaining > Epsilon {
			result.Failures = append(result.Failures, Failure{
				TaskID: t.ID,
				Reason: fmt.Sprintf("Deadline reached before fully scheduled; %.2fh remaining", remaining),
			})
			for day, hours := range allocations {
				ledger.Release(day, hours)
				result.DailyAllocationsUsed[day] -= hours
			}
			continue
		}

		start, end := plannedWindow(firstDay, lastDay, params)
		t.PlannedStart, t.PlannedEnd = &start, &end
		if err := t.SetDailyAllocations(allocations); err != nil {
			result.Failures = append(result.Failures, Failure{TaskID: t.ID, Reason: err.Error()})
			continue
		}
		result.Scheduled = append(result.Scheduled, t)
	}

	return result, nil
}

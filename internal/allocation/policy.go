// Package allocation implements the three distribution policies of
// spec.md §4.D that turn a task's estimated_duration into a
// map<date, hours>, plus the precedence rule used to build the
// workload view of an existing task.
package allocation

import (
	"math"

	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/task"
)

// EvenSplit distributes estimated_duration evenly across the workdays
// in [planned_start, planned_end]. Used as the fallback when optimizer
// data is absent.
func EvenSplit(t *task.Task, checker calendar.HolidayChecker, includeAllDays bool) map[task.DateKey]float64 {
	if t.PlannedStart == nil || t.PlannedEnd == nil || t.EstimatedDuration == nil {
		return nil
	}
	start := task.NewDateKey(*t.PlannedStart)
	end := task.NewDateKey(*t.PlannedEnd)
	workdays := calendar.WorkdaysBetween(start, end, checker, includeAllDays)
	if len(workdays) == 0 {
		return nil
	}
	perDay := *t.EstimatedDuration / float64(len(workdays))
	out := make(map[task.DateKey]float64, len(workdays))
	for _, d := range workdays {
		out[d] = perDay
	}
	return out
}

// OptimizerMap returns the task's own daily_allocations verbatim: the
// authoritative source when present.
func OptimizerMap(t *task.Task) map[task.DateKey]float64 {
	if len(t.DailyAllocations) == 0 {
		return nil
	}
	out := make(map[task.DateKey]float64, len(t.DailyAllocations))
	for k, v := range t.DailyAllocations {
		out[k] = v
	}
	return out
}

// FixedInterval treats an is_fixed task with a planned window but no
// daily_allocations as an even split over its workdays.
func FixedInterval(t *task.Task, checker calendar.HolidayChecker, includeAllDays bool) map[task.DateKey]float64 {
	if !t.IsFixed {
		return nil
	}
	return EvenSplit(t, checker, includeAllDays)
}

// Resolve computes the workload view of a task under the precedence
// rule: optimizer map > fixed interval (only if is_fixed) > even
// split.
func Resolve(t *task.Task) map[task.DateKey]float64 {
	return ResolveWithCalendar(t, nil, false)
}

// ResolveWithCalendar is Resolve with an explicit holiday checker and
// include-all-days flag, used when the caller's workday policy
// differs from the zero-value (weekends-only) default.
func ResolveWithCalendar(t *task.Task, checker calendar.HolidayChecker, includeAllDays bool) map[task.DateKey]float64 {
	if m := OptimizerMap(t); m != nil {
		return m
	}
	if m := FixedInterval(t, checker, includeAllDays); m != nil {
		return m
	}
	return EvenSplit(t, checker, includeAllDays)
}

// CeilToTenth rounds v up to the nearest tenth, used by the Balanced
// strategy's per-day quota computation (spec.md §4.G).
func CeilToTenth(v float64) float64 {
	return math.Ceil(v*10) / 10
}

// Package workload implements the per-day committed-hours ledger that
// every scheduling strategy reads and writes (spec.md §4.C). A Ledger
// is private to a single optimizer invocation and is never shared
// across calls.
package workload

import (
	"github.com/taskdog/taskdog/internal/allocation"
	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/task"
)

// HolidayChecker reports whether a calendar date is a holiday. A nil
// checker means only weekends are non-workdays.
type HolidayChecker = calendar.HolidayChecker

// IsWorkday reports whether d is a schedulable day: true iff
// includeAllDays, or (d is Mon-Fri AND (checker is nil OR
// !checker.IsHoliday(d))).
func IsWorkday(d task.DateKey, checker HolidayChecker, includeAllDays bool) bool {
	return calendar.IsWorkday(d, checker, includeAllDays)
}

// Ledger is the process-wide (per optimizer call) per-day hour
// accumulator.
type Ledger struct {
	reserved map[task.DateKey]float64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{reserved: map[task.DateKey]float64{}}
}

// Reserved returns the hours committed on d.
func (l *Ledger) Reserved(d task.DateKey) float64 {
	return l.reserved[d]
}

// AvailableOn returns max(0, cap - reserved[d]).
func (l *Ledger) AvailableOn(d task.DateKey, cap float64) float64 {
	avail := cap - l.reserved[d]
	if avail < 0 {
		return 0
	}
	return avail
}

// Reserve adds hours to reserved[d]. Precondition: hours >= 0.
func (l *Ledger) Reserve(d task.DateKey, hours float64) {
	if hours < 0 {
		return
	}
	l.reserved[d] += hours
}

// Release subtracts hours from reserved[d], clamping at 0.
func (l *Ledger) Release(d task.DateKey, hours float64) {
	v := l.reserved[d] - hours
	if v < 0 {
		v = 0
	}
	l.reserved[d] = v
}

// Snapshot returns a copy of the full reserved map, used to build the
// optimizer summary and to check the "no date exceeds cap" invariant.
func (l *Ledger) Snapshot() map[task.DateKey]float64 {
	out := make(map[task.DateKey]float64, len(l.reserved))
	for k, v := range l.reserved {
		out[k] = v
	}
	return out
}

// Seed pre-populates the ledger with hours from tasks the strategy
// must not reschedule: fixed, in-progress, or (outside force_override)
// any task with a planned_start. Each task's contribution is resolved
// via the allocation-precedence rule in spec.md §4.D.
func (l *Ledger) Seed(tasks []*task.Task, forceOverride bool) {
	for _, t := range tasks {
		if !t.ShouldCountInWorkload() {
			continue
		}
		include := false
		if forceOverride {
			include = t.IsFixed || t.Status == task.StatusInProgress
		} else {
			include = t.PlannedStart != nil
		}
		if !include {
			continue
		}
		for d, hours := range allocation.Resolve(t) {
			l.Reserve(d, hours)
		}
	}
}

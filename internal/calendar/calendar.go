// Package calendar holds the workday predicate shared by the workload
// ledger and the allocation policies, kept separate from both so
// neither package has to import the other for it.
package calendar

import (
	"time"

	"github.com/taskdog/taskdog/internal/task"
)

// HolidayChecker reports whether a calendar date is a holiday. A nil
// checker means only weekends are non-workdays (spec.md §6).
type HolidayChecker interface {
	IsHoliday(d task.DateKey) bool
}

// IsWorkday reports whether d is a schedulable day: true iff
// includeAllDays, or (d is Mon-Fri AND (checker is nil OR
// !checker.IsHoliday(d))).
func IsWorkday(d task.DateKey, checker HolidayChecker, includeAllDays bool) bool {
	if includeAllDays {
		return true
	}
	wd := d.Time().Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if checker != nil && checker.IsHoliday(d) {
		return false
	}
	return true
}

// WorkdaysBetween returns the workdays in [from, to] inclusive, in
// ascending order.
func WorkdaysBetween(from, to task.DateKey, checker HolidayChecker, includeAllDays bool) []task.DateKey {
	var out []task.DateKey
	if from.After(to) {
		return out
	}
	for d := from; !d.After(to); d = d.AddDays(1) {
		if IsWorkday(d, checker, includeAllDays) {
			out = append(out, d)
		}
	}
	return out
}

// CountWorkdays returns len(WorkdaysBetween(...)) without allocating
// the slice contents beyond counting.
func CountWorkdays(from, to task.DateKey, checker HolidayChecker, includeAllDays bool) int {
	return len(WorkdaysBetween(from, to, checker, includeAllDays))
}

// Package optimizer implements the pluggable strategy family (spec.md
// §4.E-I) and the orchestrator that drives them (§4.J). Every
// strategy assigns planned_start/planned_end and daily_allocations to
// a batch of candidate tasks under workday, capacity, deadline,
// dependency, and fixed-task constraints.
package optimizer

import (
	"time"

	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// Epsilon is the tolerance used wherever the spec says "remaining >
// ε" (Round-Robin) or similar near-zero comparisons.
const Epsilon = 1e-6

// Params bundles the inputs common to every strategy invocation.
type Params struct {
	StartDate      task.DateKey
	MaxHoursPerDay float64
	HolidayChecker calendar.HolidayChecker
	CurrentTime    time.Time
	IncludeAllDays bool

	// DayStartTime/DayEndTime are offsets from local midnight used to
	// stamp planned_start/planned_end; they do not reflect intra-day
	// packing since the ledger is day-granular (spec.md §4.E).
	DayStartTime time.Duration
	DayEndTime   time.Duration
}

// Failure records why a single candidate task could not be scheduled.
type Failure struct {
	TaskID int
	Reason string
}

// Result is the output of a single strategy invocation.
type Result struct {
	Scheduled           []*task.Task
	Failures            []Failure
	DailyAllocationsUsed map[task.DateKey]float64
}

// Strategy is the abstract optimizer contract (spec.md §4.E).
type Strategy interface {
	Optimize(tasks, contextTasks []*task.Task, params Params, ledger *workload.Ledger) (*Result, error)
}

// atTime stamps date d with the given time-of-day offset from
// midnight, in params.CurrentTime's location convention (local).
func atTime(d task.DateKey, offset time.Duration) time.Time {
	return d.Time().Add(offset)
}

// plannedWindow builds the (start, end) timestamps for a task whose
// committed days run from firstDay to lastDay inclusive.
func plannedWindow(firstDay, lastDay task.DateKey, params Params) (time.Time, time.Time) {
	return atTime(firstDay, params.DayStartTime), atTime(lastDay, params.DayEndTime)
}

// effectiveDeadline resolves the glossary's "effective deadline": the
// task's own deadline if set, else start_date advanced by
// horizonWorkdays workdays.
func effectiveDeadline(t *task.Task, params Params, horizonWorkdays int) task.DateKey {
	if t.Deadline != nil {
		return task.NewDateKey(*t.Deadline)
	}
	return advanceWorkdays(params.StartDate, horizonWorkdays, params.HolidayChecker, params.IncludeAllDays)
}

func advanceWorkdays(start task.DateKey, n int, checker calendar.HolidayChecker, includeAllDays bool) task.DateKey {
	if n <= 0 {
		return start
	}
	d := start
	count := 0
	for {
		if calendar.IsWorkday(d, checker, includeAllDays) {
			count++
			if count == n {
				return d
			}
		}
		d = d.AddDays(1)
	}
}

// pastDeadline reports whether date d lies after deadline; Greedy's
// day loop uses it as its stop condition.
func pastDeadline(d, deadline task.DateKey) bool { return d.After(deadline) }

// RegistryEntry describes one strategy selectable by name.
type RegistryEntry struct {
	Factory     func(dayStart, dayEnd time.Duration) Strategy
	DisplayName string
	Description string
}

var registry = map[string]RegistryEntry{
	"greedy": {
		Factory:     func(start, end time.Duration) Strategy { return &GreedyStrategy{defaultHorizonWorkdays: 90} },
		DisplayName: "Earliest First",
		Description: "Packs tasks earliest-fit by (deadline, priority).",
	},
	"balanced": {
		Factory:     func(start, end time.Duration) Strategy { return &BalancedStrategy{defaultHorizonWorkdays: 10} },
		DisplayName: "Equal Distribution",
		Description: "Spreads each task evenly across its workdays up to its deadline.",
	},
	"backward": {
		Factory:     func(start, end time.Duration) Strategy { return &BackwardStrategy{defaultHorizonWorkdays: 90} },
		DisplayName: "Just-In-Time",
		Description: "Packs tasks backward from their deadline.",
	},
	"round_robin": {
		Factory:     func(start, end time.Duration) Strategy { return &RoundRobinStrategy{defaultHorizonWorkdays: 90, iterationCap: 10000} },
		DisplayName: "Parallel Progress",
		Description: "Rotates daily capacity among all schedulable tasks.",
	},
}

// RegisteredAlgorithms lists the known algorithm names in a stable
// order; Describe returns each one's display metadata.
func RegisteredAlgorithms() []string {
	return []string{"greedy", "balanced", "backward", "round_robin"}
}

// Describe returns the display name and description for algorithm, or
// false if unknown.
func Describe(name string) (display, description string, ok bool) {
	e, ok := registry[name]
	if !ok {
		return "", "", false
	}
	return e.DisplayName, e.Description, true
}

// Create instantiates the named strategy. The built-in factories
// ignore defaultStartTime and defaultEndTime; planned times are
// stamped from Params.DayStartTime/DayEndTime. It fails with
// Validation on an unknown name.
func Create(name string, defaultStartTime, defaultEndTime time.Duration) (Strategy, error) {
	e, ok := registry[name]
	if !ok {
		return nil, errs.NewValidation("unknown optimization algorithm %q", name)
	}
	return e.Factory(defaultStartTime, defaultEndTime), nil
}

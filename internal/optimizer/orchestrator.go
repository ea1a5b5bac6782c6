package optimizer

import (
	"sort"
	"time"

	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/workload"
)

// Request bundles one orchestrator invocation's inputs (spec.md §4.J).
type Request struct {
	// TaskIDs, when non-nil, restricts targets to this explicit set;
	// every id must exist or the call fails with NotFound. Nil means
	// "all tasks" (the implicit selection).
	TaskIDs []int

	Algorithm      string
	StartDate      task.DateKey
	MaxHoursPerDay float64
	ForceOverride  bool
	IncludeAllDays bool
	CurrentTime    time.Time
	HolidayChecker calendar.HolidayChecker

	DefaultDayStartTime time.Duration
	DefaultDayEndTime   time.Duration

	// ParentOf optionally maps a child task id to its parent task id,
	// enabling parent-period propagation (spec.md §4.J step 11). A nil
	// map makes that step a no-op (spec.md Design Notes, Open
	// Question: hierarchy is optional).
	ParentOf map[int]int
}

// Summary reports the aggregate outcome of one orchestration run.
type Summary struct {
	ScheduledCount      int
	FailedCount         int
	OverloadedDays      []task.DateKey
	TotalHoursScheduled float64
	RangeStart          task.DateKey
	RangeEnd            task.DateKey
}

// Output is the full result of Run, ready for the caller to persist
// and broadcast.
type Output struct {
	// Scheduled holds only tasks that now carry planned times and
	// allocations (spec.md §4.E/§4.J); it is what Summary.ScheduledCount
	// counts and what schedule_optimized reports.
	Scheduled        []*task.Task
	Failed           []Failure
	DailyAllocations map[task.DateKey]float64
	Summary          Summary
	BeforeSnapshot   map[int]*time.Time
	// Cleared holds orphan tasks whose schedule was wiped under
	// force_override (step 10) — they carry no planned times, so they
	// are not "scheduled", but the caller still must persist them.
	Cleared []*task.Task
	// ParentUpdates lists parent tasks whose planned window changed
	// during propagation (step 11), for the caller to persist.
	ParentUpdates []*task.Task
}

// ToPersist returns every task Run produced that the caller must save:
// newly scheduled tasks, cleared orphans, and propagated parent windows.
func (o *Output) ToPersist() []*task.Task {
	out := make([]*task.Task, 0, len(o.Scheduled)+len(o.Cleared)+len(o.ParentUpdates))
	out = append(out, o.Scheduled...)
	out = append(out, o.Cleared...)
	out = append(out, o.ParentUpdates...)
	return out
}

// Run drives one optimization call over allTasks per spec.md §4.J. It
// is a pure function: allTasks is never mutated, all work happens on
// clones, and persistence is the caller's responsibility (the
// single-writer / batched-transaction discipline described in
// spec.md §5 belongs to the repository-backed service layer, not
// here).
func Run(allTasks []*task.Task, req Request) (*Output, error) {
	byID := make(map[int]*task.Task, len(allTasks))
	for _, t := range allTasks {
		byID[t.ID] = t
	}

	before := make(map[int]*time.Time, len(allTasks))
	for _, t := range allTasks {
		before[t.ID] = t.PlannedStart
	}

	// Step 2: target selection.
	var targets []*task.Task
	explicit := req.TaskIDs != nil
	if explicit {
		var missing []int
		for _, id := range req.TaskIDs {
			t, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			targets = append(targets, t)
		}
		if len(missing) > 0 {
			return nil, errs.NewNotFoundMany(missing)
		}
	} else {
		targets = allTasks
	}

	// Step 3: schedulability filter. Fixed tasks validate successfully
	// under force_override (so an explicit request naming one does not
	// spuriously report NotSchedulable) but are never handed to a
	// strategy as a placement candidate: spec.md §3 makes is_fixed
	// immutable by every strategy unconditionally, so "schedulable" and
	// "placeable" are kept as two different sets.
	var schedulable []*task.Task
	reasons := make(map[int]string)
	targetIDSet := make(map[int]struct{}, len(targets))
	for _, t := range targets {
		targetIDSet[t.ID] = struct{}{}
		if err := t.ValidateSchedulable(req.ForceOverride); err != nil {
			reasons[t.ID] = err.Error()
			continue
		}
		if t.IsFixed {
			continue // immutable; seeds the ledger as context instead
		}
		schedulable = append(schedulable, t)
	}

	// Step 4.
	if explicit && len(schedulable) == 0 {
		return nil, &errs.NoSchedulableTasksError{TaskIDs: req.TaskIDs, Reasons: reasons}
	}

	// Step 5: context tasks.
	var contextTasks []*task.Task
	switch {
	case explicit:
		for _, t := range allTasks {
			if _, isTarget := targetIDSet[t.ID]; isTarget {
				continue
			}
			if t.IsFinished() {
				continue
			}
			if t.PlannedStart != nil {
				contextTasks = append(contextTasks, t)
			}
		}
	case req.ForceOverride:
		for _, t := range allTasks {
			if t.IsFixed || t.Status == task.StatusInProgress {
				contextTasks = append(contextTasks, t)
			}
		}
	default:
		for _, t := range allTasks {
			if t.ShouldCountInWorkload() && t.PlannedStart != nil {
				contextTasks = append(contextTasks, t)
			}
		}
	}

	// Step 6: seed the ledger.
	ledger := workload.New()
	ledger.Seed(contextTasks, req.ForceOverride)

	// Step 7: build the strategy.
	strategy, err := Create(req.Algorithm, req.DefaultDayStartTime, req.DefaultDayEndTime)
	if err != nil {
		return nil, err
	}

	params := Params{
		StartDate:      req.StartDate,
		MaxHoursPerDay: req.MaxHoursPerDay,
		HolidayChecker: req.HolidayChecker,
		CurrentTime:    req.CurrentTime,
		IncludeAllDays: req.IncludeAllDays,
		DayStartTime:   req.DefaultDayStartTime,
		DayEndTime:     req.DefaultDayEndTime,
	}

	// Step 8: run the strategy.
	result, err := strategy.Optimize(schedulable, contextTasks, params, ledger)
	if err != nil {
		return nil, err
	}

	scheduledIDs := make(map[int]struct{}, len(result.Scheduled))
	for _, t := range result.Scheduled {
		scheduledIDs[t.ID] = struct{}{}
	}

	// Step 10: clear orphan schedules under force_override.
	var cleared []*task.Task
	if req.ForceOverride {
		for _, t := range schedulable {
			if _, ok := scheduledIDs[t.ID]; ok {
				continue
			}
			if before[t.ID] != nil {
				clone := t.Clone()
				clone.ClearSchedule(req.CurrentTime)
				cleared = append(cleared, clone)
			}
		}
	}

	out := &Output{
		Scheduled:        result.Scheduled,
		Failed:           result.Failures,
		DailyAllocations: result.DailyAllocationsUsed,
		BeforeSnapshot:   before,
		Cleared:          cleared,
	}

	// Step 11: parent-period propagation. byID is updated in place with
	// the freshly scheduled/cleared clones so a parent's window is
	// derived from this run's results, not the pre-optimization originals.
	for _, t := range out.Scheduled {
		byID[t.ID] = t
	}
	for _, t := range out.Cleared {
		byID[t.ID] = t
	}
	changed := make([]*task.Task, 0, len(out.Scheduled)+len(out.Cleared))
	changed = append(changed, out.Scheduled...)
	changed = append(changed, out.Cleared...)
	out.ParentUpdates = propagateParentPeriods(byID, changed, req.ParentOf, req.CurrentTime)

	// Step 12: build summary.
	out.Summary = buildSummary(out.Scheduled, out.Failed, contextTasks, ledger, req.MaxHoursPerDay, req.StartDate)

	return out, nil
}

func buildSummary(scheduled []*task.Task, failed []Failure, contextTasks []*task.Task, ledger *workload.Ledger, cap float64, start task.DateKey) Summary {
	s := Summary{
		ScheduledCount: len(scheduled),
		FailedCount:    len(failed),
		RangeStart:     start,
	}

	var totalHours float64
	rangeEnd := start
	for _, t := range scheduled {
		for _, h := range t.DailyAllocations {
			totalHours += h
		}
		if t.PlannedEnd != nil {
			end := task.NewDateKey(*t.PlannedEnd)
			if end.After(rangeEnd) {
				rangeEnd = end
			}
		}
	}
	s.TotalHoursScheduled = totalHours
	s.RangeEnd = rangeEnd

	snapshot := ledger.Snapshot()
	var overloaded []task.DateKey
	for d, reserved := range snapshot {
		if reserved > cap+Epsilon {
			overloaded = append(overloaded, d)
		}
	}
	sort.Slice(overloaded, func(i, j int) bool { return overloaded[i].Before(overloaded[j]) })
	s.OverloadedDays = overloaded

	return s
}

// propagateParentPeriods recurses up the optional parent hierarchy so
// each parent's planned window exactly spans its children.
func propagateParentPeriods(byID map[int]*task.Task, changed []*task.Task, parentOf map[int]int, now time.Time) []*task.Task {
	if len(parentOf) == 0 {
		return nil
	}

	childrenByParent := make(map[int][]int)
	for child, parent := range parentOf {
		childrenByParent[parent] = append(childrenByParent[parent], child)
	}

	var updated []*task.Task
	seen := make(map[int]struct{})

	var visit func(parentID int)
	visit = func(parentID int) {
		if _, done := seen[parentID]; done {
			return
		}
		seen[parentID] = struct{}{}
		parent, ok := byID[parentID]
		if !ok {
			return
		}
		children := childrenByParent[parentID]
		if len(children) == 0 {
			return
		}
		var minStart, maxEnd *time.Time
		for _, cid := range children {
			child, ok := byID[cid]
			if !ok {
				continue
			}
			if child.PlannedStart != nil && (minStart == nil || child.PlannedStart.Before(*minStart)) {
				minStart = child.PlannedStart
			}
			if child.PlannedEnd != nil && (maxEnd == nil || child.PlannedEnd.After(*maxEnd)) {
				maxEnd = child.PlannedEnd
			}
		}
		if minStart == nil || maxEnd == nil {
			return
		}
		if parent.PlannedStart != nil && parent.PlannedEnd != nil &&
			parent.PlannedStart.Equal(*minStart) && parent.PlannedEnd.Equal(*maxEnd) {
			return
		}
		clone := parent.Clone()
		clone.PlannedStart, clone.PlannedEnd = minStart, maxEnd
		clone.UpdatedAt = now
		updated = append(updated, clone)
		byID[parentID] = clone
		if grandparent, ok := parentOf[parentID]; ok {
			visit(grandparent)
		}
	}

	for _, t := range changed {
		if parentID, ok := parentOf[t.ID]; ok {
			visit(parentID)
		}
	}

	return updated
}

package taskdog

import (
	"context"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/optimizer"
	"github.com/taskdog/taskdog/internal/task"
)

// OptimizeRequest is the caller-facing optimize trigger (spec.md §4.J);
// it fills in the engine-wide defaults and holiday checker before
// delegating to optimizer.Run.
type OptimizeRequest struct {
	TaskIDs        []int
	Algorithm      string
	StartDate      task.DateKey
	ForceOverride  bool
	IncludeAllDays bool

	// ParentOf optionally maps child task id to parent task id for step
	// 11 propagation (spec.md Design Notes: hierarchy is optional).
	ParentOf map[int]int
}

// Optimize runs the requested scheduling algorithm over the current
// task set, persists every changed task in one batch, and broadcasts
// schedule_optimized (spec.md §5, §4.J).
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest, actor Actor) (*optimizer.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.DefaultAlgorithm
	}
	includeAllDays := req.IncludeAllDays || s.cfg.IncludeAllDays

	out, err := optimizer.Run(all, optimizer.Request{
		TaskIDs:             req.TaskIDs,
		Algorithm:           algorithm,
		StartDate:           req.StartDate,
		MaxHoursPerDay:      s.cfg.MaxHoursPerDay,
		ForceOverride:       req.ForceOverride,
		IncludeAllDays:      includeAllDays,
		CurrentTime:         s.now(),
		HolidayChecker:      s.holidays,
		DefaultDayStartTime: s.cfg.DayStartTime,
		DefaultDayEndTime:   s.cfg.DayEndTime,
		ParentOf:            req.ParentOf,
	})
	if err != nil {
		return nil, err
	}

	if toSave := out.ToPersist(); len(toSave) > 0 {
		if err := s.repo.SaveAll(ctx, toSave); err != nil {
			return nil, err
		}
	}

	s.publishLocked(broadcast.ScheduleOptimized(s.now(), actor.ClientID, actor.UserName, algorithm, out.Summary.ScheduledCount, out.Summary.FailedCount))
	return &out.Summary, nil
}

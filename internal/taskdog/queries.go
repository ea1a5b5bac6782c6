package taskdog

import (
	"context"
	"sort"
	"time"

	"github.com/taskdog/taskdog/internal/allocation"
	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
)

// TaskFilter narrows ListTasks; zero values mean "no filter on this
// dimension". Status/Tag/PriorityBand are matched case-sensitively
// against the task's own fields.
type TaskFilter struct {
	Status       task.Status
	Tag          string
	PriorityBand string
	Archived     *bool
	OverdueOnly  bool
}

func (f TaskFilter) accepts(t *task.Task, now func() bool) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	if f.PriorityBand != "" && t.PriorityBand() != f.PriorityBand {
		return false
	}
	if f.Archived != nil && t.Archived != *f.Archived {
		return false
	}
	if f.OverdueOnly && !now() {
		return false
	}
	return true
}

// ListTasks returns every task matching filter, sorted by id ascending.
func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]*task.Task, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if filter.accepts(t, func() bool { return t.IsOverdue(now) }) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetTask returns a single task by id.
func (s *Service) GetTask(ctx context.Context, id int) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// TaskDetail embeds a task with its notes presence and resolved
// dependency chain (spec.md §6 Design Notes).
type TaskDetail struct {
	Task        *task.Task
	HasNotes    bool
	Prereqs     []int
	Dependents  []int
}

// GetTaskDetail returns id's task together with notes presence and its
// position in the dependency graph.
func (s *Service) GetTaskDetail(ctx context.Context, id int) (*TaskDetail, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return &TaskDetail{
		Task:       t.Clone(),
		HasNotes:   s.notes.Has(id),
		Prereqs:    g.Prereqs(id),
		Dependents: g.Dependents(id),
	}, nil
}

// GanttRow is one task's resolved per-day allocation within a
// requested date range.
type GanttRow struct {
	TaskID      int
	Name        string
	Allocations map[task.DateKey]float64
}

// GetGanttData returns one row per task whose planned window
// intersects [from, to], with per-day hours resolved via the
// allocation precedence rule (spec.md §4.D).
func (s *Service) GetGanttData(ctx context.Context, from, to task.DateKey) ([]GanttRow, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var rows []GanttRow
	for _, t := range all {
		if t.PlannedStart == nil || t.PlannedEnd == nil {
			continue
		}
		start, end := task.NewDateKey(*t.PlannedStart), task.NewDateKey(*t.PlannedEnd)
		if end.Before(from) || start.After(to) {
			continue
		}
		resolved := allocation.ResolveWithCalendar(t, s.holidays, s.cfg.IncludeAllDays)
		inRange := make(map[task.DateKey]float64, len(resolved))
		for d, h := range resolved {
			if d.Before(from) || d.After(to) {
				continue
			}
			inRange[d] = h
		}
		rows = append(rows, GanttRow{TaskID: t.ID, Name: t.Name, Allocations: inRange})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TaskID < rows[j].TaskID })
	return rows, nil
}

// TagStat is one tag's aggregate task count and logged hours.
type TagStat struct {
	Tag         string
	TaskCount   int
	LoggedHours float64
}

// GetTagStatistics aggregates task count and logged hours per tag.
func (s *Service) GetTagStatistics(ctx context.Context) ([]TagStat, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byTag := make(map[string]*TagStat)
	for _, t := range all {
		for _, tag := range t.Tags {
			st, ok := byTag[tag]
			if !ok {
				st = &TagStat{Tag: tag}
				byTag[tag] = st
			}
			st.TaskCount++
			st.LoggedHours += t.ProgressHours()
		}
	}
	out := make([]TagStat, 0, len(byTag))
	for _, st := range byTag {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}

// Statistics summarizes task health over a trailing period.
type Statistics struct {
	Period           string
	TotalTasks       int
	CompletedTasks   int
	CompletionRate   float64
	AverageLeadTime  float64 // hours, actual_start to actual_end
	OverdueCount     int
	HoursLogged      float64
	HoursPlanned     float64
}

// CalculateStatistics summarizes tasks created within period
// ("7d", "30d", or "all") relative to now.
func (s *Service) CalculateStatistics(ctx context.Context, period string) (*Statistics, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	cutoff, err := periodCutoff(period, now)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Period: period}
	var leadTimeSum float64
	var leadTimeCount int
	for _, t := range all {
		if !cutoff.IsZero() && t.CreatedAt.Before(cutoff) {
			continue
		}
		stats.TotalTasks++
		if t.Status == task.StatusCompleted {
			stats.CompletedTasks++
			if t.ActualStart != nil && t.ActualEnd != nil {
				leadTimeSum += t.ActualEnd.Sub(*t.ActualStart).Hours()
				leadTimeCount++
			}
		}
		if t.IsOverdue(now) {
			stats.OverdueCount++
		}
		stats.HoursLogged += t.ProgressHours()
		if t.EstimatedDuration != nil {
			stats.HoursPlanned += *t.EstimatedDuration
		}
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks)
	}
	if leadTimeCount > 0 {
		stats.AverageLeadTime = leadTimeSum / float64(leadTimeCount)
	}
	return stats, nil
}

// periodCutoff returns the earliest CreatedAt to include for period, or
// the zero time for "all" (no lower bound).
func periodCutoff(period string, now time.Time) (time.Time, error) {
	switch period {
	case "7d":
		return now.AddDate(0, 0, -7), nil
	case "30d":
		return now.AddDate(0, 0, -30), nil
	case "all":
		return time.Time{}, nil
	default:
		return time.Time{}, errs.NewValidation("unknown statistics period %q", period)
	}
}

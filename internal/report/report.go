// Package report renders taskdog query results to a terminal: task
// lists, gantt rows, tag statistics, and period statistics. It holds
// no business logic of its own, only formatting (spec.md §1, the
// out-of-scope console reporter).
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/taskdog"
)

var (
	completedColor = color.New(color.FgGreen)
	overdueColor   = color.New(color.FgRed)
	inProgColor    = color.New(color.FgHiGreen)
	faint          = color.New(color.Faint)
)

// Tasks writes one row per task: id, name, status, priority, tags, and
// deadline, highlighting overdue deadlines in red relative to now.
func Tasks(w io.Writer, tasks []*task.Task, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Status", "Priority", "Tags", "Deadline"})
	for _, tk := range tasks {
		deadline := "-"
		if tk.Deadline != nil {
			deadline = tk.Deadline.Format("2006-01-02")
			if tk.IsOverdue(now) {
				deadline = overdueColor.Sprint(deadline)
			}
		}
		status := formatStatus(tk.Status)
		t.AppendRow(table.Row{tk.ID, tk.Name, status, tk.Priority, formatTags(tk.Tags), deadline})
	}
	t.Render()
}

// GanttRows writes one row per task with its per-day allocations
// rendered as "YYYY-MM-DD:Hh" pairs, sorted by date.
func GanttRows(w io.Writer, rows []taskdog.GanttRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Allocations"})
	for _, row := range rows {
		days := make([]task.DateKey, 0, len(row.Allocations))
		for d := range row.Allocations {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
		var cells string
		for i, d := range days {
			if i > 0 {
				cells += ", "
			}
			cells += fmt.Sprintf("%s:%.1fh", d, row.Allocations[d])
		}
		t.AppendRow(table.Row{row.TaskID, row.Name, cells})
	}
	t.Render()
}

// TagStatistics writes one row per tag with its task count and logged
// hours.
func TagStatistics(w io.Writer, stats []taskdog.TagStat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Tag", "Tasks", "Hours Logged"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Tag, s.TaskCount, fmt.Sprintf("%.1f", s.LoggedHours)})
	}
	t.Render()
}

// Statistics writes a single summary table for a trailing period.
func Statistics(w io.Writer, s *taskdog.Statistics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Period", "Total", "Completed", "Completion Rate", "Avg Lead Time (h)", "Overdue", "Hours Logged", "Hours Planned"})
	t.AppendRow(table.Row{
		s.Period,
		s.TotalTasks,
		s.CompletedTasks,
		fmt.Sprintf("%.0f%%", s.CompletionRate*100),
		fmt.Sprintf("%.1f", s.AverageLeadTime),
		overdueColor.Sprint(s.OverdueCount),
		fmt.Sprintf("%.1f", s.HoursLogged),
		fmt.Sprintf("%.1f", s.HoursPlanned),
	})
	t.Render()
}

func formatStatus(status task.Status) string {
	switch status {
	case task.StatusCompleted:
		return completedColor.Sprint(string(status))
	case task.StatusInProgress:
		return inProgColor.Sprint(string(status))
	case task.StatusCanceled:
		return faint.Sprint(string(status))
	default:
		return string(status)
	}
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := tags[0]
	for _, tg := range tags[1:] {
		out += "," + tg
	}
	return out
}

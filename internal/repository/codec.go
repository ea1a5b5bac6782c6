package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/taskdog/taskdog/internal/task"
)

// Row is the flat, storage-shaped projection of task.Task used by both
// SQL drivers: scalar columns map directly, and the four collection
// fields (tags, depends_on, daily_allocations, actual_daily_hours) are
// stored as JSON text columns, decoded generically and then converted
// through mapstructure — this mirrors the teacher's pattern of
// database/sql scanning into a loosely-typed row before decoding into
// the domain struct.
type Row struct {
	ID                int
	Name              string
	Description       string
	Priority          int
	Status            string
	Archived          bool
	Recurrence        string
	PlannedStart      *time.Time
	PlannedEnd        *time.Time
	Deadline          *time.Time
	EstimatedDuration *float64
	IsFixed           bool
	ActualStart       *time.Time
	ActualEnd         *time.Time
	TagsJSON          string
	DependsOnJSON     string
	DailyAllocJSON    string
	ActualHoursJSON   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToRow flattens t for storage.
func ToRow(t *task.Task) (Row, error) {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return Row{}, fmt.Errorf("marshal tags: %w", err)
	}
	dependsOn := make([]int, 0, len(t.DependsOn))
	for id := range t.DependsOn {
		dependsOn = append(dependsOn, id)
	}
	deps, err := json.Marshal(dependsOn)
	if err != nil {
		return Row{}, fmt.Errorf("marshal depends_on: %w", err)
	}
	allocations, err := json.Marshal(t.DailyAllocations)
	if err != nil {
		return Row{}, fmt.Errorf("marshal daily_allocations: %w", err)
	}
	actual, err := json.Marshal(t.ActualDailyHours)
	if err != nil {
		return Row{}, fmt.Errorf("marshal actual_daily_hours: %w", err)
	}
	return Row{
		ID: t.ID, Name: t.Name, Description: t.Description, Priority: t.Priority,
		Status: string(t.Status), Archived: t.Archived, Recurrence: string(t.Recurrence),
		PlannedStart: t.PlannedStart, PlannedEnd: t.PlannedEnd, Deadline: t.Deadline,
		EstimatedDuration: t.EstimatedDuration, IsFixed: t.IsFixed,
		ActualStart: t.ActualStart, ActualEnd: t.ActualEnd,
		TagsJSON: string(tags), DependsOnJSON: string(deps),
		DailyAllocJSON: string(allocations), ActualHoursJSON: string(actual),
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}, nil
}

// FromRow reconstructs a task.Task from its storage projection.
func FromRow(r Row) (*task.Task, error) {
	var tags []string
	if err := json.Unmarshal([]byte(nonEmpty(r.TagsJSON, "[]")), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	var dependsOnList []int
	if err := json.Unmarshal([]byte(nonEmpty(r.DependsOnJSON, "[]")), &dependsOnList); err != nil {
		return nil, fmt.Errorf("unmarshal depends_on: %w", err)
	}
	var rawAllocations map[string]any
	if err := json.Unmarshal([]byte(nonEmpty(r.DailyAllocJSON, "{}")), &rawAllocations); err != nil {
		return nil, fmt.Errorf("unmarshal daily_allocations: %w", err)
	}
	allocations, err := decodeDateHourMap(rawAllocations)
	if err != nil {
		return nil, fmt.Errorf("decode daily_allocations: %w", err)
	}
	var rawActual map[string]any
	if err := json.Unmarshal([]byte(nonEmpty(r.ActualHoursJSON, "{}")), &rawActual); err != nil {
		return nil, fmt.Errorf("unmarshal actual_daily_hours: %w", err)
	}
	actual, err := decodeDateHourMap(rawActual)
	if err != nil {
		return nil, fmt.Errorf("decode actual_daily_hours: %w", err)
	}

	dependsOn := make(map[int]struct{}, len(dependsOnList))
	for _, id := range dependsOnList {
		dependsOn[id] = struct{}{}
	}

	return &task.Task{
		ID: r.ID, Name: r.Name, Description: r.Description, Priority: r.Priority,
		Tags: tags, Status: task.Status(r.Status), Archived: r.Archived,
		Recurrence: task.Recurrence(r.Recurrence),
		PlannedStart: r.PlannedStart, PlannedEnd: r.PlannedEnd, Deadline: r.Deadline,
		EstimatedDuration: r.EstimatedDuration, IsFixed: r.IsFixed,
		ActualStart: r.ActualStart, ActualEnd: r.ActualEnd,
		ActualDailyHours: actual, DailyAllocations: allocations, DependsOn: dependsOn,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

// decodeDateHourMap converts a generically-unmarshaled JSON object
// (string keys, float64 values) into the domain's map[task.DateKey]float64,
// using mapstructure so the date-key's underlying-string conversion and
// the numeric decoding go through one declarative path rather than a
// hand-rolled loop with type assertions.
func decodeDateHourMap(raw map[string]any) (map[task.DateKey]float64, error) {
	out := make(map[task.DateKey]float64, len(raw))
	if len(raw) == 0 {
		return out, nil
	}
	if err := mapstructure.Decode(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

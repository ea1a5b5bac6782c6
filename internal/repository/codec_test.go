package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/task"
)

func TestRowRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := now.Add(4 * time.Hour)
	duration := 4.0
	original := &task.Task{
		ID: 1, Name: "t1", Description: "desc", Priority: 50,
		Tags: []string{"work", "urgent"}, Status: task.StatusPending,
		PlannedStart: &now, PlannedEnd: &end, EstimatedDuration: &duration,
		DailyAllocations: map[task.DateKey]float64{task.NewDateKey(now): 4.0},
		ActualDailyHours: map[task.DateKey]float64{},
		DependsOn:        map[int]struct{}{2: {}, 3: {}},
		CreatedAt:        now, UpdatedAt: now,
	}

	row, err := ToRow(original)
	require.NoError(t, err)
	restored, err := FromRow(row)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.Tags, restored.Tags)
	assert.Equal(t, original.DependsOn, restored.DependsOn)
	assert.Equal(t, original.DailyAllocations, restored.DailyAllocations)
	assert.True(t, original.PlannedStart.Equal(*restored.PlannedStart))
}

func TestFromRowHandlesEmptyCollections(t *testing.T) {
	t.Parallel()

	row := Row{ID: 1, Name: "bare", Status: string(task.StatusPending)}
	restored, err := FromRow(row)
	require.NoError(t, err)
	assert.Empty(t, restored.Tags)
	assert.Empty(t, restored.DependsOn)
	assert.Empty(t, restored.DailyAllocations)
}

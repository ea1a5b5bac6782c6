package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustDuration(h float64) *float64 { return &h }

func TestValidateSchedulable(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	t.Run("MissingEstimatedDuration", func(t *testing.T) {
		tk := New(1, "no estimate", 50, now)
		err := tk.ValidateSchedulable(false)
		require.Error(t, err)
	})

	t.Run("FinishedTaskRejected", func(t *testing.T) {
		tk := New(1, "done", 50, now)
		tk.EstimatedDuration = mustDuration(4)
		require.NoError(t, tk.Start(now))
		require.NoError(t, tk.Complete(now))
		require.Error(t, tk.ValidateSchedulable(false))
	})

	t.Run("ArchivedTaskRejected", func(t *testing.T) {
		tk := New(1, "archived", 50, now)
		tk.EstimatedDuration = mustDuration(4)
		require.NoError(t, tk.Archive(now))
		require.Error(t, tk.ValidateSchedulable(false))
	})

	t.Run("FixedTaskNeedsForceOverride", func(t *testing.T) {
		tk := New(1, "fixed", 50, now)
		tk.EstimatedDuration = mustDuration(4)
		require.NoError(t, tk.FixTimes(now, now.Add(8*time.Hour), map[DateKey]float64{NewDateKey(now): 4}, now))
		require.Error(t, tk.ValidateSchedulable(false))
		require.NoError(t, tk.ValidateSchedulable(true))
	})

	t.Run("SchedulableTask", func(t *testing.T) {
		tk := New(1, "ok", 50, now)
		tk.EstimatedDuration = mustDuration(4)
		require.NoError(t, tk.ValidateSchedulable(false))
	})
}

func TestSetDailyAllocations(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := now.Add(9 * time.Hour)
	tk := New(1, "t", 50, now)
	tk.PlannedStart = &now
	tk.PlannedEnd = &end
	tk.EstimatedDuration = mustDuration(4)

	t.Run("RejectsNonpositive", func(t *testing.T) {
		err := tk.SetDailyAllocations(map[DateKey]float64{NewDateKey(now): 0})
		require.Error(t, err)
	})

	t.Run("RejectsOutOfWindow", func(t *testing.T) {
		outside := NewDateKey(now.AddDate(0, 0, 5))
		err := tk.SetDailyAllocations(map[DateKey]float64{outside: 2})
		require.Error(t, err)
	})

	t.Run("AcceptsInWindow", func(t *testing.T) {
		err := tk.SetDailyAllocations(map[DateKey]float64{NewDateKey(now): 4})
		require.NoError(t, err)
		require.Equal(t, 4.0, tk.DailyAllocations[NewDateKey(now)])
	})
}

func TestShouldCountInWorkload(t *testing.T) {
	now := time.Now()
	tk := New(1, "t", 50, now)
	require.True(t, tk.ShouldCountInWorkload())

	require.NoError(t, tk.Archive(now))
	require.False(t, tk.ShouldCountInWorkload())
	require.NoError(t, tk.Restore(now))
	require.True(t, tk.ShouldCountInWorkload())

	require.NoError(t, tk.Start(now))
	require.NoError(t, tk.Complete(now))
	require.False(t, tk.ShouldCountInWorkload())
}

func TestStatusTransitions(t *testing.T) {
	now := time.Now()

	t.Run("PendingToInProgressToCompleted", func(t *testing.T) {
		tk := New(1, "t", 50, now)
		require.NoError(t, tk.Start(now))
		require.Equal(t, StatusInProgress, tk.Status)
		require.NotNil(t, tk.ActualStart)
		require.NoError(t, tk.Complete(now))
		require.Equal(t, StatusCompleted, tk.Status)
		require.NotNil(t, tk.ActualEnd)
	})

	t.Run("CannotCompleteWithoutStarting", func(t *testing.T) {
		tk := New(1, "t", 50, now)
		require.Error(t, tk.Complete(now))
	})

	t.Run("CannotMutateFinished", func(t *testing.T) {
		tk := New(1, "t", 50, now)
		require.NoError(t, tk.Start(now))
		require.NoError(t, tk.Complete(now))
		require.Error(t, tk.Start(now))
		require.Error(t, tk.Pause(now))
	})

	t.Run("ReopenClearsFinishedStatus", func(t *testing.T) {
		tk := New(1, "t", 50, now)
		require.NoError(t, tk.Start(now))
		require.NoError(t, tk.Complete(now))
		require.NoError(t, tk.Reopen(now))
		require.Equal(t, StatusPending, tk.Status)
		require.Nil(t, tk.ActualEnd)
	})

	t.Run("CannotReopenArchived", func(t *testing.T) {
		tk := New(1, "t", 50, now)
		require.NoError(t, tk.Cancel(now))
		require.NoError(t, tk.Archive(now))
		require.Error(t, tk.Reopen(now))
	})
}

func TestArchiveRestoreIdempotence(t *testing.T) {
	now := time.Now()
	tk := New(1, "t", 50, now)
	before := *tk
	require.NoError(t, tk.Archive(now))
	require.NoError(t, tk.Restore(now))
	after := *tk
	before.UpdatedAt, after.UpdatedAt = time.Time{}, time.Time{}
	require.Equal(t, before, after)
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	tk := New(1, "t", 50, now)
	tk.EstimatedDuration = mustDuration(4)
	tk.DependsOn[2] = struct{}{}
	tk.DailyAllocations[NewDateKey(now)] = 4

	clone := tk.Clone()
	clone.DependsOn[3] = struct{}{}
	clone.DailyAllocations[NewDateKey(now)] = 99
	*clone.EstimatedDuration = 100

	require.NotContains(t, tk.DependsOn, 3)
	require.Equal(t, 4.0, tk.DailyAllocations[NewDateKey(now)])
	require.Equal(t, 4.0, *tk.EstimatedDuration)
}

func TestSpawnRecurrence(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 7)
	tk := New(1, "weekly report", 60, now)
	tk.Recurrence = RecurrenceWeekly
	tk.Deadline = &deadline
	tk.EstimatedDuration = mustDuration(2)
	require.NoError(t, tk.Start(now))
	require.NoError(t, tk.Complete(now))

	next := tk.SpawnRecurrence(2, now)
	require.NotNil(t, next)
	require.Equal(t, StatusPending, next.Status)
	require.Equal(t, tk.Name, next.Name)
	require.Equal(t, deadline.AddDate(0, 0, 7), *next.Deadline)
}

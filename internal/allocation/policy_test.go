package allocation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/taskdog/taskdog/internal/task"
)

func dur(h float64) *float64 { return &h }

func TestEvenSplitAcrossWorkdays(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2025, 1, 8, 18, 0, 0, 0, time.UTC)  // Wednesday
	tk := task.New(1, "t", 50, start)
	tk.PlannedStart, tk.PlannedEnd = &start, &end
	tk.EstimatedDuration = dur(9)

	m := EvenSplit(tk, nil, false)
	require.Len(t, m, 3)
	for _, h := range m {
		require.InDelta(t, 3.0, h, 1e-9)
	}
}

func TestEvenSplitSkipsWeekend(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) // Friday
	end := time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC)  // Monday
	tk := task.New(1, "t", 50, start)
	tk.PlannedStart, tk.PlannedEnd = &start, &end
	tk.EstimatedDuration = dur(10)

	m := EvenSplit(tk, nil, false)
	require.Len(t, m, 2) // Friday and Monday only
}

func TestResolvePrecedence(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)

	t.Run("OptimizerMapWins", func(t *testing.T) {
		tk := task.New(1, "t", 50, start)
		tk.PlannedStart, tk.PlannedEnd = &start, &end
		tk.EstimatedDuration = dur(4)
		require.NoError(t, tk.SetDailyAllocations(map[task.DateKey]float64{task.NewDateKey(start): 4}))
		m := Resolve(tk)
		require.Equal(t, 4.0, m[task.NewDateKey(start)])
	})

	t.Run("FixedIntervalWhenNoOptimizerMap", func(t *testing.T) {
		tk := task.New(1, "t", 50, start)
		tk.PlannedStart, tk.PlannedEnd = &start, &end
		tk.EstimatedDuration = dur(4)
		tk.IsFixed = true
		m := Resolve(tk)
		require.Equal(t, 4.0, m[task.NewDateKey(start)])
	})

	t.Run("EvenSplitFallback", func(t *testing.T) {
		tk := task.New(1, "t", 50, start)
		tk.PlannedStart, tk.PlannedEnd = &start, &end
		tk.EstimatedDuration = dur(4)
		m := Resolve(tk)
		require.Equal(t, 4.0, m[task.NewDateKey(start)])
	})
}

func TestCeilToTenth(t *testing.T) {
	require.Equal(t, 3.4, CeilToTenth(3.333))
	require.Equal(t, 3.0, CeilToTenth(3.0))
	require.Equal(t, 1.3, CeilToTenth(10.0/8.0))
}

func TestEvenSplitExactAllocationMap(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2025, 1, 7, 18, 0, 0, 0, time.UTC)  // Tuesday
	tk := task.New(1, "t", 50, start)
	tk.PlannedStart, tk.PlannedEnd = &start, &end
	tk.EstimatedDuration = dur(6)

	got := EvenSplit(tk, nil, false)
	want := map[task.DateKey]float64{
		task.NewDateKey(start): 3,
		task.NewDateKey(end):   3,
	}
	// require.Equal's diff collapses map[DateKey]float64 mismatches into
	// a single line; cmp.Diff pinpoints which date/hours pair is wrong.
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("allocation map mismatch (-want +got):\n%s", diff)
	}
}

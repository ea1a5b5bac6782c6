package holiday

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/task"
)

func TestCheckerIsHoliday(t *testing.T) {
	t.Parallel()

	newYear := task.DateKey("2025-01-01")
	c, err := NewChecker(StaticSource{Dates: map[task.DateKey]struct{}{newYear: {}}})
	require.NoError(t, err)

	assert.True(t, c.IsHoliday(newYear))
	assert.False(t, c.IsHoliday(task.DateKey("2025-01-02")))
}

type failingSource struct{}

func (failingSource) Fetch() (map[task.DateKey]struct{}, error) {
	return nil, errors.New("provider unreachable")
}

func TestNewCheckerSurfacesFetchError(t *testing.T) {
	t.Parallel()

	_, err := NewChecker(failingSource{})
	assert.Error(t, err)
}

func TestRefreshSwapsSet(t *testing.T) {
	t.Parallel()

	d1 := task.DateKey("2025-01-01")
	d2 := task.DateKey("2025-07-04")
	src := &swappableSource{dates: map[task.DateKey]struct{}{d1: {}}}

	c, err := NewChecker(src)
	require.NoError(t, err)
	require.True(t, c.IsHoliday(d1))
	require.False(t, c.IsHoliday(d2))

	src.dates = map[task.DateKey]struct{}{d2: {}}
	require.NoError(t, c.Refresh())

	assert.False(t, c.IsHoliday(d1))
	assert.True(t, c.IsHoliday(d2))
}

type swappableSource struct {
	dates map[task.DateKey]struct{}
}

func (s *swappableSource) Fetch() (map[task.DateKey]struct{}, error) {
	return s.dates, nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/errs"
	"github.com/taskdog/taskdog/internal/task"
)

var testNow = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func TestMemoryCreateGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemory()

	id, err := repo.GenerateNextID(ctx)
	require.NoError(t, err)
	tk := task.New(id, "t1", 50, testNow)
	require.NoError(t, repo.Create(ctx, tk))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.Name)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	var notFound *errs.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMemoryGetAllSortedByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemory()

	for _, id := range []int{3, 1, 2} {
		require.NoError(t, repo.Create(ctx, task.New(id, "t", 1, testNow)))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func TestMemoryGetByIDReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Create(ctx, task.New(1, "t", 1, testNow)))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	got.Name = "mutated"

	reread, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "t", reread.Name)
}

func TestMemorySaveAllUpserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemory()
	tk := task.New(1, "t", 1, testNow)
	require.NoError(t, repo.SaveAll(ctx, []*task.Task{tk}))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Name)
}

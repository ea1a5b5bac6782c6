package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRejectsSelfDependency(t *testing.T) {
	g := New([]int{1})
	require.Error(t, g.Add(1, 1))
}

func TestAddRejectsUnknownIDs(t *testing.T) {
	g := New([]int{1})
	require.Error(t, g.Add(1, 2))
	require.Error(t, g.Add(2, 1))
}

func TestAddRejectsDuplicateEdge(t *testing.T) {
	g := New([]int{1, 2})
	require.NoError(t, g.Add(1, 2))
	require.Error(t, g.Add(1, 2))
}

func TestCycleDetectionReportsPath(t *testing.T) {
	// S5: pre-state 1 -> 2 -> 3 (1 depends on 2, 2 depends on 3).
	g := New([]int{1, 2, 3})
	require.NoError(t, g.Add(1, 2))
	require.NoError(t, g.Add(2, 3))

	err := g.Add(3, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "3 → 1 → 2 → 3")

	// Graph is unchanged.
	require.False(t, g.HasEdge(3, 1))
}

func TestRemoveFailsOnAbsentEdge(t *testing.T) {
	g := New([]int{1, 2})
	require.Error(t, g.Remove(1, 2))
}

func TestAddRemoveIdempotence(t *testing.T) {
	g := New([]int{1, 2})
	require.NoError(t, g.Add(1, 2))
	require.NoError(t, g.Remove(1, 2))
	require.NoError(t, g.Add(1, 2))
	require.True(t, g.HasEdge(1, 2))
}

func TestTopologicalOrderTieBreaksAscending(t *testing.T) {
	g := New([]int{5, 3, 1, 4, 2})
	order, err := g.TopologicalOrder(nil)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestTopologicalOrderRespectsEdges(t *testing.T) {
	g := New([]int{1, 2, 3})
	require.NoError(t, g.Add(2, 1)) // 2 depends on 1: 1 must precede 2
	require.NoError(t, g.Add(3, 2)) // 3 depends on 2: 2 must precede 3

	order, err := g.TopologicalOrder(nil)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestTopologicalOrderSubset(t *testing.T) {
	g := New([]int{1, 2, 3})
	require.NoError(t, g.Add(3, 1))
	order, err := g.TopologicalOrder([]int{1, 3})
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, order)
}

func TestDependentsAndPrereqs(t *testing.T) {
	g := New([]int{1, 2, 3})
	require.NoError(t, g.Add(2, 1))
	require.NoError(t, g.Add(3, 1))
	require.Equal(t, []int{1}, g.Prereqs(2))
	require.Equal(t, []int{2, 3}, g.Dependents(1))
}

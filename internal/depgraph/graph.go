// Package depgraph is the cycle-detecting relational core over
// task-to-task prerequisite edges that gates scheduling order
// (spec.md §4.B). It operates on a loaded snapshot of edges; the
// caller is responsible for persisting the updated edge set back onto
// each task's DependsOn field.
package depgraph

import (
	"fmt"
	"sort"

	"github.com/taskdog/taskdog/internal/errs"
)

// Graph tracks, for each task id, the set of prerequisite ids it
// depends on.
type Graph struct {
	ids   map[int]struct{}
	edges map[int]map[int]struct{} // taskID -> set of prereqIDs
}

// New builds an empty graph over the given known task ids.
func New(ids []int) *Graph {
	g := &Graph{
		ids:   make(map[int]struct{}, len(ids)),
		edges: make(map[int]map[int]struct{}, len(ids)),
	}
	for _, id := range ids {
		g.ids[id] = struct{}{}
		g.edges[id] = map[int]struct{}{}
	}
	return g
}

// Load builds a graph from a map of task id to its current DependsOn
// set, as read from the task store.
func Load(dependsOn map[int]map[int]struct{}) *Graph {
	ids := make([]int, 0, len(dependsOn))
	for id := range dependsOn {
		ids = append(ids, id)
	}
	g := New(ids)
	for id, prereqs := range dependsOn {
		for p := range prereqs {
			g.edges[id][p] = struct{}{}
		}
	}
	return g
}

// Prereqs returns the prerequisite ids of taskID, sorted ascending.
func (g *Graph) Prereqs(taskID int) []int {
	set := g.edges[taskID]
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Dependents returns the ids of tasks that directly depend on taskID.
func (g *Graph) Dependents(taskID int) []int {
	var out []int
	for id, prereqs := range g.edges {
		if _, ok := prereqs[taskID]; ok {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// HasEdge reports whether taskID currently depends on prereqID.
func (g *Graph) HasEdge(taskID, prereqID int) bool {
	_, ok := g.edges[taskID][prereqID]
	return ok
}

// Snapshot returns the full edge set, suitable for writing back onto
// each task's DependsOn field before persistence.
func (g *Graph) Snapshot() map[int]map[int]struct{} {
	out := make(map[int]map[int]struct{}, len(g.edges))
	for id, prereqs := range g.edges {
		cp := make(map[int]struct{}, len(prereqs))
		for p := range prereqs {
			cp[p] = struct{}{}
		}
		out[id] = cp
	}
	return out
}

// Add records that taskID depends on prereqID. It fails with
// Validation if taskID == prereqID, either id is unknown, the edge
// already exists, or adding it would create a cycle.
func (g *Graph) Add(taskID, prereqID int) error {
	if taskID == prereqID {
		return errs.NewValidation("task %d cannot depend on itself", taskID)
	}
	if _, ok := g.ids[taskID]; !ok {
		return errs.NewValidation("unknown task id %d", taskID)
	}
	if _, ok := g.ids[prereqID]; !ok {
		return errs.NewValidation("unknown task id %d", prereqID)
	}
	if g.HasEdge(taskID, prereqID) {
		return errs.NewValidation("dependency %d -> %d already exists", taskID, prereqID)
	}
	if path, found := g.findPath(prereqID, taskID); found {
		full := append([]int{taskID}, path...)
		return errs.NewValidation("dependency cycle detected: %s", formatPath(full))
	}
	g.edges[taskID][prereqID] = struct{}{}
	return nil
}

// Remove deletes the edge taskID -> prereqID. It fails with
// Validation if the edge is absent.
func (g *Graph) Remove(taskID, prereqID int) error {
	if !g.HasEdge(taskID, prereqID) {
		return errs.NewValidation("dependency %d -> %d does not exist", taskID, prereqID)
	}
	delete(g.edges[taskID], prereqID)
	return nil
}

// findPath performs a depth-first search from `from`, following
// prerequisite edges forward, looking for `to`. It returns the path
// from `from` to `to` (inclusive) when found.
func (g *Graph) findPath(from, to int) ([]int, bool) {
	visited := map[int]bool{}
	var path []int

	var dfs func(node int) bool
	dfs = func(node int) bool {
		if visited[node] {
			return false
		}
		visited[node] = true
		path = append(path, node)
		if node == to {
			return true
		}
		ids := g.Prereqs(node)
		for _, next := range ids {
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(from) {
		return append([]int(nil), path...), true
	}
	return nil, false
}

func formatPath(ids []int) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += " → "
		}
		s += fmt.Sprintf("%d", id)
	}
	return s
}

// TopologicalOrder returns a linearization consistent with every edge
// in the graph, restricted to subset when non-nil, with ties broken
// by ascending id. It uses Kahn's algorithm: O(V+E).
func (g *Graph) TopologicalOrder(subset []int) ([]int, error) {
	nodes := subset
	if nodes == nil {
		nodes = make([]int, 0, len(g.ids))
		for id := range g.ids {
			nodes = append(nodes, id)
		}
	}
	nodeSet := make(map[int]struct{}, len(nodes))
	for _, id := range nodes {
		nodeSet[id] = struct{}{}
	}

	// indegree here is "number of prerequisites still unresolved"
	// within the subset; a node with no unresolved prerequisites is
	// ready to emit.
	indegree := make(map[int]int, len(nodes))
	dependents := make(map[int][]int, len(nodes))
	for _, id := range nodes {
		count := 0
		for _, p := range g.Prereqs(id) {
			if _, ok := nodeSet[p]; ok {
				count++
				dependents[p] = append(dependents[p], id)
			}
		}
		indegree[id] = count
	}

	ready := make([]int, 0, len(nodes))
	for _, id := range nodes {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Ints(ready)

	var order []int
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, errs.NewValidation("dependency graph contains a cycle within the requested subset")
	}
	return order, nil
}

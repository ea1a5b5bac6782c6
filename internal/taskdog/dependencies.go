package taskdog

import (
	"context"

	"github.com/taskdog/taskdog/internal/depgraph"
	"github.com/taskdog/taskdog/internal/task"
)

// loadGraph builds a depgraph.Graph from every task currently in the
// repository. Callers must already hold s.mu.
func (s *Service) loadGraph(ctx context.Context) (*depgraph.Graph, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	dependsOn := make(map[int]map[int]struct{}, len(all))
	for _, t := range all {
		dependsOn[t.ID] = t.DependsOn
	}
	return depgraph.Load(dependsOn), nil
}

// AddDependency records that taskID depends on prereqID, rejecting the
// change if it would introduce a cycle (spec.md §4.B). No broadcast
// event type is defined for dependency changes; subscribers observe
// the change the next time they fetch task detail.
func (s *Service) AddDependency(ctx context.Context, taskID, prereqID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	if err := g.Add(taskID, prereqID); err != nil {
		return err
	}
	return s.saveDependsOn(ctx, taskID, g)
}

// RemoveDependency deletes the taskID -> prereqID edge.
func (s *Service) RemoveDependency(ctx context.Context, taskID, prereqID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	if err := g.Remove(taskID, prereqID); err != nil {
		return err
	}
	return s.saveDependsOn(ctx, taskID, g)
}

// saveDependsOn persists only taskID's DependsOn field back onto the
// stored task, leaving every other task untouched.
func (s *Service) saveDependsOn(ctx context.Context, taskID int, g *depgraph.Graph) error {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	snapshot := g.Snapshot()
	t.DependsOn = snapshot[taskID]
	if t.DependsOn == nil {
		t.DependsOn = map[int]struct{}{}
	}
	return s.repo.SaveAll(ctx, []*task.Task{t})
}

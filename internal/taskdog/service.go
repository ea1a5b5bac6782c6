// Package taskdog is the core service facade (spec.md §9, "explicit
// value passed into every orchestrator call, owning the repository,
// holiday checker, notes store, and subscriber set"): it wires
// task/depgraph/workload/allocation/optimizer onto the external
// collaborators (repository, holiday, notes, broadcast) and serializes
// every mutation behind a single writer (spec.md §5).
package taskdog

import (
	"sync"
	"time"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/notes"
	"github.com/taskdog/taskdog/internal/repository"
)

// Clock returns the current time; tests substitute a fixed value.
type Clock func() time.Time

// Service is the core's single entry point. All exported methods are
// safe for concurrent use: mutations are serialized by mu (spec.md §5,
// "a global mutex around the orchestrator"), while reads take their
// own snapshot from the repository without blocking writers for
// longer than the repository call itself.
type Service struct {
	mu sync.Mutex

	repo     repository.TaskRepository
	notes    *notes.Store
	holidays calendar.HolidayChecker
	bus      *broadcast.Broadcaster
	cfg      *config.Config
	clock    Clock
}

// New builds a Service. holidays may be nil (weekends-only calendar).
func New(repo repository.TaskRepository, notesStore *notes.Store, holidays calendar.HolidayChecker, bus *broadcast.Broadcaster, cfg *config.Config, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		notes:    notesStore,
		holidays: holidays,
		bus:      bus,
		cfg:      cfg,
		clock:    clock,
	}
}

// Actor identifies who is making a mutation, for broadcast attribution
// (spec.md §4.K) and originator suppression.
type Actor struct {
	ClientID string
	UserName string
}

func (s *Service) now() time.Time { return s.clock() }

// Subscribe registers sub under clientID, delivers it a "connected"
// welcome event, and returns an unsubscribe func.
func (s *Service) Subscribe(clientID string, sub broadcast.Subscriber) (unsubscribe func()) {
	_ = sub.Deliver(broadcast.Connected(s.now(), clientID))
	return s.bus.Connect(clientID, sub)
}

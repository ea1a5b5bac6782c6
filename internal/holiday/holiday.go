// Package holiday implements the optional HolidayChecker collaborator
// (spec.md §6): a set of non-workday calendar dates, refreshed on a
// schedule so a long-lived server picks up a provider's updates
// without a restart.
package holiday

import (
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/taskdog/taskdog/internal/task"
)

// Source fetches the current holiday set from an external provider
// (a file, an API, a static calendar). Implementations are expected to
// be cheap enough to call on every refresh tick.
type Source interface {
	Fetch() (map[task.DateKey]struct{}, error)
}

// StaticSource is a Source backed by a fixed, in-memory set, useful
// for tests and for deployments that manage holidays as config.
type StaticSource struct {
	Dates map[task.DateKey]struct{}
}

func (s StaticSource) Fetch() (map[task.DateKey]struct{}, error) {
	return s.Dates, nil
}

// Checker caches a holiday set and implements calendar.HolidayChecker.
// It is safe for concurrent use: Refresh swaps the cached set under a
// read-write lock while IsHoliday only ever takes the read side.
type Checker struct {
	mu     sync.RWMutex
	dates  map[task.DateKey]struct{}
	source Source
}

// NewChecker builds a Checker backed by source, performing one
// synchronous fetch so the first IsHoliday call is never empty
// because a refresh hasn't run yet.
func NewChecker(source Source) (*Checker, error) {
	c := &Checker{source: source}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// IsHoliday reports whether d is in the cached holiday set.
func (c *Checker) IsHoliday(d task.DateKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.dates[d]
	return ok
}

// Refresh re-fetches the holiday set from the source and swaps it in.
func (c *Checker) Refresh() error {
	dates, err := c.source.Fetch()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.dates = dates
	c.mu.Unlock()
	return nil
}

// StartPeriodicRefresh schedules Refresh on spec per robfig/cron
// syntax (e.g. "0 3 * * *" for daily at 03:00) and returns the running
// scheduler so the caller can Stop it on shutdown. Refresh errors are
// reported to onError rather than panicking the scheduler goroutine;
// onError may be nil to ignore them.
func (c *Checker) StartPeriodicRefresh(spec string, onError func(error)) (*cron.Cron, error) {
	sched := cron.New()
	_, err := sched.AddFunc(spec, func() {
		if err := c.Refresh(); err != nil && onError != nil {
			onError(err)
		}
	})
	if err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}

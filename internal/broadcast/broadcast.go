// Package broadcast implements the Change-Event Broadcaster (spec.md
// §4.K): every successful mutation becomes a typed Event fanned out to
// connected Subscribers, excluding whichever one originated it.
package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds, per spec.md §6's wire format.
const (
	TypeConnected           = "connected"
	TypeTaskCreated         = "task_created"
	TypeTaskUpdated         = "task_updated"
	TypeTaskDeleted         = "task_deleted"
	TypeTaskStatusChanged   = "task_status_changed"
	TypeTaskNotesUpdated    = "task_notes_updated"
	TypeScheduleOptimized   = "schedule_optimized"
)

// Event is the wire-stable envelope broadcast to subscribers.
type Event struct {
	Type           string         `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	SourceClientID string         `json:"source_client_id,omitempty"`
	SourceUserName string         `json:"source_user_name,omitempty"`
	Payload        map[string]any `json:"payload"`
}

// DisplayAttribution returns source_user_name when set, else
// source_client_id, per spec.md §4.K ("displayed in preference to").
func (e Event) DisplayAttribution() string {
	if e.SourceUserName != "" {
		return e.SourceUserName
	}
	return e.SourceClientID
}

// Subscriber is the core's external collaborator for delivering one
// event (spec.md §6). A delivery error causes the subscriber to be
// dropped; there is no retry.
type Subscriber interface {
	Deliver(Event) error
}

type registration struct {
	clientID string
	sub      Subscriber
}

// Broadcaster is the subscriber registry and fan-out point. It is safe
// for concurrent use: the subscriber set is mutated under a mutex and
// copied before iteration so delivery (external I/O) never happens
// while holding the lock (spec.md §5, "Subscriber set").
type Broadcaster struct {
	mu   sync.Mutex
	subs []registration
}

// New returns an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// NewClientID mints a fresh subscriber attribution token.
func NewClientID() string {
	return uuid.NewString()
}

// Connect registers sub under clientID and returns an unsubscribe
// function.
func (b *Broadcaster) Connect(clientID string, sub Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	b.subs = append(b.subs, registration{clientID: clientID, sub: sub})
	b.mu.Unlock()
	return func() { b.disconnect(clientID, sub) }
}

func (b *Broadcaster) disconnect(clientID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.subs {
		if r.clientID == clientID && r.sub == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of currently connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish fans event out to every connected subscriber except the one
// whose client_id equals event.SourceClientID (originator suppression,
// spec.md testable property 8). Delivery order matches the snapshot
// taken at the start of this call; a subscriber whose Deliver returns
// an error is dropped from the registry, with no retry.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	snapshot := make([]registration, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	var failed []registration
	for _, r := range snapshot {
		if event.SourceClientID != "" && r.clientID == event.SourceClientID {
			continue
		}
		if err := r.sub.Deliver(event); err != nil {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range failed {
		for i, r := range b.subs {
			if r.clientID == f.clientID && r.sub == f.sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}
}

// TaskCreated builds a task_created event.
func TaskCreated(now time.Time, sourceClientID, sourceUserName string, taskID int) Event {
	return Event{
		Type: TypeTaskCreated, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{"task_id": taskID},
	}
}

// TaskUpdated builds a task_updated event listing which fields changed.
func TaskUpdated(now time.Time, sourceClientID, sourceUserName string, taskID int, updatedFields []string) Event {
	return Event{
		Type: TypeTaskUpdated, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{"task_id": taskID, "updated_fields": updatedFields},
	}
}

// TaskDeleted builds a task_deleted event.
func TaskDeleted(now time.Time, sourceClientID, sourceUserName string, taskID int) Event {
	return Event{
		Type: TypeTaskDeleted, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{"task_id": taskID},
	}
}

// TaskStatusChanged builds a task_status_changed event.
func TaskStatusChanged(now time.Time, sourceClientID, sourceUserName string, taskID int, oldStatus, newStatus string) Event {
	return Event{
		Type: TypeTaskStatusChanged, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{"task_id": taskID, "old_status": oldStatus, "new_status": newStatus},
	}
}

// TaskNotesUpdated builds a task_notes_updated event.
func TaskNotesUpdated(now time.Time, sourceClientID, sourceUserName string, taskID int) Event {
	return Event{
		Type: TypeTaskNotesUpdated, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{"task_id": taskID},
	}
}

// ScheduleOptimized builds a schedule_optimized event.
func ScheduleOptimized(now time.Time, sourceClientID, sourceUserName, algorithm string, scheduledCount, failedCount int) Event {
	return Event{
		Type: TypeScheduleOptimized, Timestamp: now,
		SourceClientID: sourceClientID, SourceUserName: sourceUserName,
		Payload: map[string]any{
			"algorithm":       algorithm,
			"scheduled_count": scheduledCount,
			"failed_count":    failedCount,
		},
	}
}

// Connected builds the connected welcome event sent to a subscriber's
// own transport upon joining (never broadcast to others).
func Connected(now time.Time, clientID string) Event {
	return Event{
		Type: TypeConnected, Timestamp: now,
		Payload: map[string]any{"client_id": clientID},
	}
}

package optimizer

import (
	"testing"
	"time"

	"github.com/taskdog/taskdog/internal/task"
)

func TestCreateUnknownAlgorithm(t *testing.T) {
	_, err := Create("not-a-strategy", 9*time.Hour, 18*time.Hour)
	if err == nil {
		t.Fatal("expected an error for an unknown algorithm name")
	}
}

func TestCreateKnownAlgorithms(t *testing.T) {
	for _, name := range RegisteredAlgorithms() {
		s, err := Create(name, 9*time.Hour, 18*time.Hour)
		if err != nil {
			t.Fatalf("Create(%q) unexpected error: %v", name, err)
		}
		if s == nil {
			t.Fatalf("Create(%q) returned nil strategy", name)
		}
		if display, desc, ok := Describe(name); !ok || display == "" || desc == "" {
			t.Fatalf("Describe(%q) incomplete: display=%q desc=%q ok=%v", name, display, desc, ok)
		}
	}
}

func TestEffectiveDeadlineUsesOwnDeadlineWhenSet(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06"))
	deadline := mustParse("2025-01-08")
	tk := &task.Task{ID: 1, Deadline: &deadline}
	params := Params{StartDate: start}
	got := effectiveDeadline(tk, params, 90)
	if got != task.NewDateKey(deadline) {
		t.Fatalf("got %v, want %v", got, task.NewDateKey(deadline))
	}
}

func TestEffectiveDeadlineFallsBackToHorizon(t *testing.T) {
	start := task.NewDateKey(mustParse("2025-01-06")) // Monday
	tk := &task.Task{ID: 1}
	params := Params{StartDate: start}
	got := effectiveDeadline(tk, params, 5)
	want := advanceWorkdays(start, 5, nil, false)
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func mustParse(s string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return ts
}

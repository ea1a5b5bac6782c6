package taskdog

import (
	"context"

	"github.com/taskdog/taskdog/internal/broadcast"
)

// WriteNotes overwrites the free-text note attached to id and
// broadcasts task_notes_updated.
func (s *Service) WriteNotes(ctx context.Context, id int, content string, actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.notes.Write(id, content); err != nil {
		return err
	}
	s.publishLocked(broadcast.TaskNotesUpdated(s.now(), actor.ClientID, actor.UserName, id))
	return nil
}

// DeleteNotes removes the note attached to id, if any.
func (s *Service) DeleteNotes(ctx context.Context, id int, actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.notes.Delete(id); err != nil {
		return err
	}
	s.publishLocked(broadcast.TaskNotesUpdated(s.now(), actor.ClientID, actor.UserName, id))
	return nil
}

// ReadNotes returns the note content for id, if any.
func (s *Service) ReadNotes(_ context.Context, id int) (content string, hasNotes bool, err error) {
	return s.notes.Read(id)
}

package server

import (
	"context"
	"net/http"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/taskdog"
)

type createTaskBody struct {
	Name              string   `json:"name"`
	Priority          int      `json:"priority"`
	Description       string   `json:"description"`
	Deadline          *string  `json:"deadline"`
	EstimatedDuration *float64 `json:"estimated_duration"`
	Tags              []string `json:"tags"`
	Recurrence        string   `json:"recurrence"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var body createTaskBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	in := taskdog.CreateTaskInput{
		Description:       body.Description,
		EstimatedDuration: body.EstimatedDuration,
		Tags:              body.Tags,
		Recurrence:        task.Recurrence(body.Recurrence),
	}
	if body.Deadline != nil {
		t, err := parseRFC3339(*body.Deadline)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		in.Deadline = &t
	}

	tk, err := s.core.CreateTask(r.Context(), body.Name, body.Priority, in, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tk)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	detail, err := s.core.GetTaskDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type updateTaskBody struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Priority          *int     `json:"priority"`
	Deadline          *string  `json:"deadline"`
	ClearDeadline     bool     `json:"clear_deadline"`
	EstimatedDuration *float64 `json:"estimated_duration"`
	Recurrence        *string  `json:"recurrence"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	var body updateTaskBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	fields := task.UpdateFields{
		Name:              body.Name,
		Description:       body.Description,
		Priority:          body.Priority,
		ClearDeadline:     body.ClearDeadline,
		EstimatedDuration: body.EstimatedDuration,
	}
	if body.Deadline != nil {
		t, err := parseRFC3339(*body.Deadline)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		fields.Deadline = &t
	}
	if body.Recurrence != nil {
		r := task.Recurrence(*body.Recurrence)
		fields.Recurrence = &r
	}

	tk, err := s.core.UpdateTask(r.Context(), id, fields, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	if err := s.core.DeleteTask(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.StartTask)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.PauseTask)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.CompleteTask)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.CancelTask)
}

func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.ReopenTask)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.ArchiveTask)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.RestoreTask)
}

func (s *Server) handleUnfix(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.core.UnfixTask)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int, actor taskdog.Actor) (*task.Task, error)) {
	id := taskIDFromCtx(r.Context())
	tk, err := fn(r.Context(), id, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

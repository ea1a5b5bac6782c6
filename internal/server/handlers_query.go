package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdog/taskdog/internal/task"
	"github.com/taskdog/taskdog/internal/taskdog"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := taskdog.TaskFilter{
		Status: task.Status(q.Get("status")),
		Tag:    q.Get("tag"),
	}
	if q.Get("archived") != "" {
		b := q.Get("archived") == "true"
		filter.Archived = &b
	}
	if q.Get("overdue") == "true" {
		filter.OverdueOnly = true
	}

	tasks, err := s.core.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) {
	fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "from and to are required (YYYY-MM-DD)"})
		return
	}
	rows, err := s.core.GetGanttData(r.Context(), task.DateKey(fromStr), task.DateKey(toStr))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleTagStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.core.GetTagStatistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}
	stats, err := s.core.CalculateStatistics(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type optimizeBody struct {
	TaskIDs        []int  `json:"task_ids"`
	Algorithm      string `json:"algorithm"`
	StartDate      string `json:"start_date"`
	ForceOverride  bool   `json:"force_override"`
	IncludeAllDays bool   `json:"include_all_days"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	summary, err := s.core.Optimize(r.Context(), taskdog.OptimizeRequest{
		TaskIDs:        body.TaskIDs,
		Algorithm:      body.Algorithm,
		StartDate:      task.DateKey(body.StartDate),
		ForceOverride:  body.ForceOverride,
		IncludeAllDays: body.IncludeAllDays,
	}, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type fixBody struct {
	Start       string                     `json:"start"`
	End         string                     `json:"end"`
	Allocations map[task.DateKey]float64   `json:"allocations"`
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	var body fixBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	start, err := parseRFC3339(body.Start)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	end, err := parseRFC3339(body.End)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	tk, err := s.core.FixTask(r.Context(), id, start, end, body.Allocations, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

type logHoursBody struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

func (s *Server) handleLogHours(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	var body logHoursBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	tk, err := s.core.LogHours(r.Context(), id, task.DateKey(body.Date), body.Hours, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	content, hasNotes, err := s.core.ReadNotes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content, "has_notes": hasNotes})
}

type writeNotesBody struct {
	Content string `json:"content"`
}

func (s *Server) handleWriteNotes(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	var body writeNotesBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.core.WriteNotes(r.Context(), id, body.Content, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNotes(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	if err := s.core.DeleteNotes(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addDependencyBody struct {
	PrereqID int `json:"prereq_id"`
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	var body addDependencyBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.core.AddDependency(r.Context(), id, body.PrereqID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	id := taskIDFromCtx(r.Context())
	prereqID, err := strconv.Atoi(chi.URLParam(r, "prereqID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid prereq id"})
		return
	}
	if err := s.core.RemoveDependency(r.Context(), id, prereqID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

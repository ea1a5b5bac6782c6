package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/taskdog"
)

type ctxKeyTaskID struct{}

// taskIDContext parses the {taskID} URL param once and stashes it so
// every sub-route under /tasks/{taskID} reads it the same way.
func taskIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "taskID"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid task id"})
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyTaskID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func taskIDFromCtx(ctx context.Context) int {
	return ctx.Value(ctxKeyTaskID{}).(int)
}

// actorFromRequest resolves the mutation attribution (spec.md §4.K)
// from the X-Client-Id / X-User-Name request headers, minting a fresh
// client id when the caller didn't supply one.
func actorFromRequest(r *http.Request) taskdog.Actor {
	clientID := r.Header.Get("X-Client-Id")
	if clientID == "" {
		clientID = broadcast.NewClientID()
	}
	return taskdog.Actor{
		ClientID: clientID,
		UserName: r.Header.Get("X-User-Name"),
	}
}

// Package server is the out-of-scope HTTP/WS transport adapter
// (spec.md §1) around the internal/taskdog core: task CRUD, gantt and
// statistics queries, the optimize trigger, and the websocket change
// feed. It holds no scheduling logic of its own.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/server/ws"
	"github.com/taskdog/taskdog/internal/taskdog"
)

// Server wires the core facade onto an HTTP handler tree.
type Server struct {
	core   *taskdog.Service
	router chi.Router
}

// New builds a Server with routes registered, CORS configured per
// origins (empty means same-origin only), and request logging through
// internal/logger.
func New(core *taskdog.Service, corsOrigins []string) *Server {
	s := &Server{core: core}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleCreateTask)
		r.Get("/gantt", s.handleGantt)
		r.Get("/tags/stats", s.handleTagStatistics)
		r.Get("/statistics", s.handleStatistics)

		r.Route("/{taskID}", func(r chi.Router) {
			r.Use(taskIDContext)
			r.Get("/", s.handleGetTask)
			r.Patch("/", s.handleUpdateTask)
			r.Delete("/", s.handleDeleteTask)

			r.Post("/start", s.handleStart)
			r.Post("/pause", s.handlePause)
			r.Post("/complete", s.handleComplete)
			r.Post("/cancel", s.handleCancel)
			r.Post("/reopen", s.handleReopen)
			r.Post("/fix", s.handleFix)
			r.Post("/unfix", s.handleUnfix)
			r.Post("/log-hours", s.handleLogHours)
			r.Post("/archive", s.handleArchive)
			r.Post("/restore", s.handleRestore)

			r.Get("/notes", s.handleGetNotes)
			r.Put("/notes", s.handleWriteNotes)
			r.Delete("/notes", s.handleDeleteNotes)

			r.Post("/dependencies", s.handleAddDependency)
			r.Delete("/dependencies/{prereqID}", s.handleRemoveDependency)
		})
	})

	r.Post("/api/v1/optimize", s.handleOptimize)
	r.Get("/ws", ws.Handler(core))

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

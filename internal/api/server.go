package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"taskboard/internal/logging"
	"taskboard/pkg/activity"
	"taskboard/pkg/task"
)

// Feed is the activity log as seen by the API: readable and subscribable.
type Feed interface {
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
	Since(ctx context.Context, afterID string, limit int) ([]activity.Event, error)
	Count(ctx context.Context) (int, error)
	Subscribe(f activity.Filter) chan *activity.Event
	Unsubscribe(ch chan *activity.Event)
}

// Server is the HTTP API server.
type Server struct {
	tasks   task.Store
	feed    Feed
	logger  *log.Logger
	webDir  string
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a new Server. webDir is served at / when non-empty.
func New(tasks task.Store, feed Feed, logger *log.Logger, webDir string) *Server {
	s := &Server{
		tasks:  tasks,
		feed:   feed,
		logger: logger,
		webDir: webDir,
		mux:    http.NewServeMux(),
	}
	s.routes()
	s.handler = logging.Middleware(logger, s.recoverer(s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks: one path, dispatched on the method inside the handler.
	s.mux.HandleFunc("/api/tasks", s.handleTasks)
	s.mux.HandleFunc("GET /api/tasks/export", s.handleExport)

	// Activity
	s.mux.HandleFunc("GET /api/activity", s.handleActivityList)
	s.mux.HandleFunc("GET /api/activity/stream", s.handleActivityStream)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Static files (Gio WASM UI)
	if s.webDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.webDir)))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json", "status", status, "err", err)
	}
}

// Message is the body of every non-list response.
type Message struct {
	Message string `json:"message"`
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, Message{Message: msg})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("handler", "method", r.Method, "path", r.URL.Path, "err", err)
	s.writeMessage(w, http.StatusInternalServerError, "Server error")
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"taskboard/internal/export"
	"taskboard/pkg/task"
)

const allowedMethods = "GET, POST, PUT, PATCH, DELETE"

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.tasks.Initialize(r.Context()); err != nil {
		s.serverError(w, r, fmt.Errorf("initialize: %w", err))
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleTaskList(w, r)
	case http.MethodPost:
		s.handleTaskCreate(w, r)
	case http.MethodPut:
		s.handleTaskUpdate(w, r)
	case http.MethodPatch:
		s.handleTaskComplete(w, r)
	case http.MethodDelete:
		s.handleTaskDelete(w, r)
	default:
		w.Header().Set("Allow", allowedMethods)
		s.writeMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", r.Method))
	}
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		tasks []task.Task
		err   error
	)
	switch r.URL.Query().Get("type") {
	case "active":
		tasks, err = s.tasks.Active(ctx)
	case "completed":
		tasks, err = s.tasks.Completed(ctx)
	case "board":
		tasks, err = s.tasks.All(ctx)
		if err == nil {
			s.writeJSON(w, http.StatusOK, task.Partition(tasks))
			return
		}
	default:
		tasks, err = s.tasks.All(ctx)
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	_, err := s.tasks.Create(r.Context(), task.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Persona:     req.Persona,
		Group:       int(*req.Group),
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeMessage(w, http.StatusCreated, "Task created successfully")
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Missing task ID")
		return
	}
	patch := task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Persona:     req.Persona,
		Group:       req.Group.intPtr(),
		Completed:   req.Completed,
	}
	outcome, err := s.tasks.Update(r.Context(), int(*req.ID), patch)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.logger.Debug("update", "id", int(*req.ID), "outcome", outcome)
	s.writeMessage(w, http.StatusOK, "Task updated successfully")
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Missing task ID")
		return
	}

	var (
		c   task.Completion
		err error
	)
	if req.ID != nil {
		c, err = s.tasks.CompleteByID(r.Context(), int(*req.ID))
	} else {
		c, err = s.tasks.CompleteByTitle(r.Context(), req.Title)
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if c.Reactivated != nil {
		s.logger.Debug("complete", "id", c.Task.ID, "reactivated", c.Reactivated.ID)
	}
	s.writeMessage(w, http.StatusOK, "Task completed successfully")
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		s.writeMessage(w, http.StatusBadRequest, "Missing task ID")
		return
	}
	// A non-numeric id cannot match any task; like any unmatched id it is a no-op.
	if id, err := strconv.Atoi(raw); err == nil {
		if _, err := s.tasks.Delete(r.Context(), id); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	s.writeMessage(w, http.StatusOK, "Task deleted successfully")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.tasks.Initialize(r.Context()); err != nil {
		s.serverError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	tasks, err := s.tasks.All(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data, f, err := export.Render(task.Partition(tasks), format)
	if errors.Is(err, export.ErrUnknownFormat) {
		s.writeMessage(w, http.StatusBadRequest, "Unknown export format")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="taskboard.%s"`, f.Ext))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write export", "format", f.Ext, "err", err)
	}
}

// decodeBody decodes a JSON body into v, replying 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		// An empty body is a request with every field missing.
		return true
	}
	s.writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

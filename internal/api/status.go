package api

import (
	"net/http"

	"taskboard/pkg/task"
)

// Status summarizes the board.
type Status struct {
	Tasks       int  `json:"tasks"`
	ToDo        int  `json:"todo"`
	InProgress  int  `json:"in_progress"`
	Completed   int  `json:"completed"`
	ActiveGroup *int `json:"active_group"`
	Activity    int  `json:"activity"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, _, err := s.tasks.Initialize(ctx); err != nil {
		s.serverError(w, r, err)
		return
	}
	tasks, err := s.tasks.All(ctx)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	b := task.Partition(tasks)
	st := Status{
		Tasks:      len(tasks),
		ToDo:       len(b.ToDo),
		InProgress: len(b.InProgress),
		Completed:  len(b.Completed),
	}
	if g, ok := task.ActiveGroup(tasks); ok {
		st.ActiveGroup = &g
	}
	if st.Activity, err = s.feed.Count(ctx); err != nil {
		s.logger.Warn("count activity", "err", err)
	}
	s.writeJSON(w, http.StatusOK, st)
}

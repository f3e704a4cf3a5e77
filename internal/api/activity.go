package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/pkg/activity"
)

func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	events, err := s.feed.Recent(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

// handleActivityStream streams new activity as Server-Sent Events. With
// ?after=<id> it first replays what was appended after that event.
// ?type=<t>[,<t>...] and ?task_id=<n> narrow the stream.
func (s *Server) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeMessage(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before replaying so nothing appended in between is lost.
	filter := streamFilter(r)
	ch := s.feed.Subscribe(filter)
	defer s.feed.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	sent := map[string]bool{}
	if after := r.URL.Query().Get("after"); after != "" {
		backlog, err := s.feed.Since(ctx, after, 500)
		if err != nil {
			s.logger.Warn("activity replay", "after", after, "err", err)
		}
		for i := range backlog {
			if !filter.Match(&backlog[i]) {
				continue
			}
			writeEvent(w, &backlog[i])
			sent[backlog[i].ID] = true
		}
		flusher.Flush()
	}

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			if sent[e.ID] {
				continue
			}
			writeEvent(w, e)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e *activity.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)
}

func streamFilter(r *http.Request) activity.Filter {
	var f activity.Filter
	for _, v := range r.URL.Query()["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}
	f.TaskID = queryInt(r, "task_id", 0)
	return f
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

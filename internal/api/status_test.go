package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/pkg/activity"
	"taskboard/pkg/task"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t,
		task.Task{ID: 1, Group: 1, Completed: true},
		task.Task{ID: 2, Group: 2},
		task.Task{ID: 3, Group: 2},
		task.Task{ID: 4, Group: 3},
	)
	env.do(t, http.MethodPatch, "/api/tasks", map[string]any{"id": 2})

	var st Status
	rec := env.do(t, http.MethodGet, "/api/status", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 4, st.Tasks)
	assert.Equal(t, 1, st.ToDo)
	assert.Equal(t, 1, st.InProgress)
	assert.Equal(t, 2, st.Completed)
	require.NotNil(t, st.ActiveGroup)
	assert.Equal(t, 2, *st.ActiveGroup)
	assert.Equal(t, 1, st.Activity)
}

func TestStatus_NoActiveGroup(t *testing.T) {
	env := newTestEnv(t, task.Task{ID: 1, Group: 1, Completed: true})
	rec := env.do(t, http.MethodGet, "/api/status", nil)
	assert.Contains(t, rec.Body.String(), `"active_group":null`)
}

func TestActivityList(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/tasks", nil)
	env.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "T", "description": "D", "persona": "P", "group": 2})

	var events []activity.Event
	rec := env.do(t, http.MethodGet, "/api/activity?limit=1", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, activity.TaskCreated, events[0].Type)
	assert.Equal(t, 2, events[0].TaskID)
}

func TestActivityStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/activity/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	post, err := http.Post(ts.URL+"/api/tasks", "application/json",
		strings.NewReader(`{"title":"T","description":"D","persona":"P","group":1}`))
	require.NoError(t, err)
	post.Body.Close()

	// The POST first seeds "Initial Setup", then creates T.
	var types []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && len(types) < 2 {
		if rest, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
			types = append(types, rest)
		}
	}
	assert.Equal(t, []string{activity.TaskSeeded, activity.TaskCreated}, types)
}

func TestActivityStream_ReplaysAfter(t *testing.T) {
	env := newTestEnv(t)
	first, err := env.bus.Append(context.Background(), activity.TaskCreated, 1, nil)
	require.NoError(t, err)
	second, err := env.bus.Append(context.Background(), activity.TaskDeleted, 1, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(env.srv)
	defer ts.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/activity/stream?after="+first.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	var id string
	for sc.Scan() {
		if rest, ok := strings.CutPrefix(sc.Text(), "id: "); ok {
			id = rest
			break
		}
	}
	assert.Equal(t, second.ID, id)
}

func TestActivityStream_Filtered(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ts.URL+"/api/activity/stream?type=task.created,task.deleted&task_id=2", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Seeds task 1, creates tasks 2 and 3, then deletes 1 and 2.
	for _, body := range []string{
		`{"title":"A","description":"D","persona":"P","group":1}`,
		`{"title":"B","description":"D","persona":"P","group":1}`,
	} {
		post, err := http.Post(ts.URL+"/api/tasks", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		post.Body.Close()
	}
	for _, id := range []string{"1", "2"} {
		del, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/tasks?id="+id, nil)
		require.NoError(t, err)
		r, err := http.DefaultClient.Do(del)
		require.NoError(t, err)
		r.Body.Close()
	}

	var got []activity.Event
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && len(got) < 2 {
		if rest, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
			var e activity.Event
			require.NoError(t, json.Unmarshal([]byte(rest), &e))
			got = append(got, e)
		}
	}
	require.Len(t, got, 2)
	assert.Equal(t, activity.TaskCreated, got[0].Type)
	assert.Equal(t, activity.TaskDeleted, got[1].Type)
	for _, e := range got {
		assert.Equal(t, 2, e.TaskID)
	}
}

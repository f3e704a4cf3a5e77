package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/pkg/activity"
	"taskboard/pkg/task"
)

// newLoggedServer returns a server whose log output is captured in buf.
func newLoggedServer(t *testing.T, feed Feed) (*Server, *bytes.Buffer) {
	t.Helper()
	store, err := task.NewMemStore()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := log.New(&buf)
	return New(store, feed, logger, ""), &buf
}

type brokenCountFeed struct{ *activity.Bus }

func (brokenCountFeed) Count(context.Context) (int, error) {
	return 0, errors.New("activity store offline")
}

func TestStatus_CountFailureIsLogged(t *testing.T) {
	srv, logs := newLoggedServer(t, brokenCountFeed{activity.NewBus(activity.NewMemLog())})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activity":0`)
	assert.Contains(t, logs.String(), "count activity")
	assert.Contains(t, logs.String(), "activity store offline")
}

func TestWriteJSON_EncodeFailureUsesServerLogger(t *testing.T) {
	srv, logs := newLoggedServer(t, activity.NewBus(activity.NewMemLog()))

	srv.writeJSON(httptest.NewRecorder(), http.StatusOK, func() {})
	assert.Contains(t, logs.String(), "write json")
}

// failingWriter accepts headers but refuses the body.
type failingWriter struct {
	header http.Header
	status int
}

func (w *failingWriter) Header() http.Header       { return w.header }
func (w *failingWriter) WriteHeader(status int)    { w.status = status }
func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }

func TestExport_WriteFailureIsLogged(t *testing.T) {
	srv, logs := newLoggedServer(t, activity.NewBus(activity.NewMemLog()))

	w := &failingWriter{header: http.Header{}}
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/export?format=csv", nil))
	assert.Equal(t, http.StatusOK, w.status)
	assert.Contains(t, logs.String(), "write export")
	assert.Contains(t, logs.String(), "client went away")
}

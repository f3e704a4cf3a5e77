package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/api"
	"taskboard/pkg/activity"
	"taskboard/pkg/client"
	"taskboard/pkg/task"
)

func newClient(t *testing.T, seed ...task.Task) *client.Client {
	t.Helper()
	store, err := task.NewMemStore(seed...)
	require.NoError(t, err)
	bus := activity.NewBus(activity.NewMemLog())
	logger := log.New(io.Discard)
	ts := httptest.NewServer(api.New(task.NewRecorder(store, bus, logger), bus, logger, ""))
	t.Cleanup(ts.Close)
	return client.New(ts.URL + "/")
}

func TestClient_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	all, err := c.List(ctx, client.ListAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, task.SeedTitle, all[0].Title)

	require.NoError(t, c.Create(ctx, task.NewTask{Title: "Build", Description: "d", Persona: "Dev", Group: 2}))
	require.NoError(t, c.Create(ctx, task.NewTask{Title: "Ship", Description: "d", Persona: "Ops", Group: 3}))

	b, err := c.Board(ctx)
	require.NoError(t, err)
	assert.Len(t, b.InProgress, 1)
	assert.Len(t, b.ToDo, 2)

	require.NoError(t, c.Complete(ctx, 1))
	active, err := c.List(ctx, client.ListActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Build", active[0].Title)

	require.NoError(t, c.CompleteByTitle(ctx, "Build"))
	done, err := c.List(ctx, client.ListCompleted)
	require.NoError(t, err)
	assert.Len(t, done, 2)

	title := "Ship it"
	require.NoError(t, c.Update(ctx, 3, task.Patch{Title: &title}))
	require.NoError(t, c.Delete(ctx, 2))

	all, err = c.List(ctx, client.ListAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ship it", all[1].Title)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Tasks)
	require.NotNil(t, st.ActiveGroup)
	assert.Equal(t, 3, *st.ActiveGroup)

	events, err := c.Activity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, activity.TaskDeleted, events[0].Type)
}

func TestClient_Export(t *testing.T) {
	c := newClient(t)

	data, err := c.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), task.SeedTitle)

	_, err = c.Export(context.Background(), "docx")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Unknown export format", apiErr.Message)
}

func TestClient_APIError(t *testing.T) {
	c := newClient(t)

	err := c.Create(context.Background(), task.NewTask{Title: "only a title"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Missing required fields", apiErr.Message)
}

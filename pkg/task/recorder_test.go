package task

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/pkg/activity"
)

func newRecorder(t *testing.T) (*Recorder, *activity.MemLog) {
	t.Helper()
	events := activity.NewMemLog()
	return NewRecorder(newStore(t), events, log.New(io.Discard)), events
}

func eventTypes(t *testing.T, l activity.Log) []string {
	t.Helper()
	recent, err := l.Recent(context.Background(), 100)
	require.NoError(t, err)
	var out []string
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i].Type)
	}
	return out
}

func TestRecorder_RecordsMutations(t *testing.T) {
	r, events := newRecorder(t)
	ctx := context.Background()

	_, _, err := r.Initialize(ctx)
	require.NoError(t, err)
	_, err = r.Create(ctx, NewTask{Title: "B", Group: 2})
	require.NoError(t, err)
	title := "Setup"
	_, err = r.Update(ctx, 1, Patch{Title: &title})
	require.NoError(t, err)
	_, err = r.CompleteByID(ctx, 1)
	require.NoError(t, err)
	_, err = r.Delete(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		activity.TaskSeeded,
		activity.TaskCreated,
		activity.TaskUpdated,
		activity.TaskCompleted,
		activity.TaskReactivated,
		activity.TaskDeleted,
	}, eventTypes(t, events))
	require.NoError(t, events.VerifyChain(ctx))
}

func TestRecorder_NotFoundRecordsNothing(t *testing.T) {
	r, events := newRecorder(t)
	ctx := context.Background()

	_, _ = r.CompleteByID(ctx, 9)
	_, _ = r.CompleteByTitle(ctx, "nope")
	_, _ = r.Update(ctx, 9, Patch{})
	_, _ = r.Delete(ctx, 9)
	_, _, _ = r.Initialize(ctx)
	_, _, _ = r.Initialize(ctx)

	assert.Equal(t, []string{activity.TaskSeeded}, eventTypes(t, events))
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, string, int, map[string]any) (*activity.Event, error) {
	return nil, errors.New("log down")
}

func TestRecorder_AppendFailureDoesNotFailMutation(t *testing.T) {
	r := NewRecorder(newStore(t), failingAppender{}, log.New(io.Discard))
	ctx := context.Background()

	created, err := r.Create(ctx, NewTask{Title: "A", Group: 1})
	require.NoError(t, err)
	c, err := r.CompleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, c.Outcome)
}

func TestRecorder_SeedEventNamesTheSeedTask(t *testing.T) {
	r, events := newRecorder(t)
	ctx := context.Background()

	seed, seeded, err := r.Initialize(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	_, _ = r.Delete(ctx, seed.ID)
	_, _, _ = r.Initialize(ctx)

	recent, err := events.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, activity.TaskSeeded, recent[0].Type)
	assert.Equal(t, 1, recent[0].TaskID)
	assert.Equal(t, SeedTitle, recent[0].Content["title"])
}

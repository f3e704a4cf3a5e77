package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendN(t *testing.T, l Log, n int) []*Event {
	t.Helper()
	var out []*Event
	for i := 1; i <= n; i++ {
		e, err := l.Append(context.Background(), TaskCreated, i, map[string]any{"title": "t"})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestMemLog_AppendChains(t *testing.T) {
	l := NewMemLog()
	events := appendN(t, l, 3)

	assert.Empty(t, events[0].PrevHash)
	assert.Equal(t, events[0].Hash, events[1].PrevHash)
	assert.Equal(t, events[1].Hash, events[2].PrevHash)
	require.NoError(t, l.VerifyChain(context.Background()))

	n, err := l.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemLog_NilContent(t *testing.T) {
	l := NewMemLog()
	e, err := l.Append(context.Background(), TaskDeleted, 7, nil)
	require.NoError(t, err)
	assert.NotNil(t, e.Content)
	require.NoError(t, l.VerifyChain(context.Background()))
}

func TestMemLog_RecentNewestFirst(t *testing.T) {
	l := NewMemLog()
	events := appendN(t, l, 5)

	recent, err := l.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, events[4].ID, recent[0].ID)
	assert.Equal(t, events[3].ID, recent[1].ID)
}

func TestMemLog_Since(t *testing.T) {
	l := NewMemLog()
	events := appendN(t, l, 4)
	ctx := context.Background()

	after, err := l.Since(ctx, events[1].ID, 10)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, events[2].ID, after[0].ID)
	assert.Equal(t, events[3].ID, after[1].ID)

	limited, err := l.Since(ctx, events[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, events[1].ID, limited[0].ID)

	unknown, err := l.Since(ctx, "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMemLog_VerifyChainDetectsTampering(t *testing.T) {
	l := NewMemLog()
	appendN(t, l, 3)

	l.events[1].Content = map[string]any{"title": "rewritten"}
	err := l.VerifyChain(context.Background())
	assert.ErrorIs(t, err, ErrChainBroken)
}

func TestMemLog_VerifyChainDetectsBrokenLink(t *testing.T) {
	l := NewMemLog()
	appendN(t, l, 2)

	l.events[1].PrevHash = "deadbeef"
	err := l.VerifyChain(context.Background())
	assert.ErrorIs(t, err, ErrChainBroken)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFromClient(client, opts...), mr
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	history, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	want := []core.Message{
		core.NewUserMessage("what is 2+2?"),
		core.NewToolCallMessage(core.ToolCall{ID: "c1", Name: "calculator", Arguments: []byte(`{"expression":"2+2"}`)}),
		core.NewToolResultMessage("c1", "4"),
		core.NewAssistantMessage("2+2 is 4."),
	}
	require.NoError(t, store.ReplaceHistory(ctx, "s1", want))

	got, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, want[1].ToolCalls[0].ID, got[1].ToolCalls[0].ID)
	assert.Equal(t, "4", got[2].Content)
	assert.Equal(t, "c1", got[2].ToolCallID)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceHistory(ctx, "s1", []core.Message{core.NewUserMessage("hi")}))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// Unknown session ids clear without error.
	require.NoError(t, store.Clear(ctx, "never-seen"))
}

func TestStore_KeyPrefix(t *testing.T) {
	store, mr := newTestStore(t, WithPrefix("chat:"))
	ctx := context.Background()

	require.NoError(t, store.ReplaceHistory(ctx, "abc", []core.Message{core.NewUserMessage("hi")}))
	assert.True(t, mr.Exists("chat:abc"))
}

func TestStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.ReplaceHistory(ctx, "s1", []core.Message{core.NewUserMessage("hi")}))
	assert.Greater(t, mr.TTL("agentchat:session:s1"), time.Duration(0))

	mr.FastForward(2 * time.Minute)

	history, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_CorruptPayload(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("agentchat:session:bad", "{not json"))

	_, err := store.GetOrCreate(context.Background(), "bad")
	assert.Error(t, err)
}

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenetalk/runtime/types"
)

func userMsg(id, text string, image []byte) types.ChatMessage {
	return types.ChatMessage{
		ID: id, Role: types.RoleUser, Text: text, Image: image, Timestamp: time.Now(),
	}
}

func assistantMsg(id, text string, image []byte) types.ChatMessage {
	return types.ChatMessage{
		ID: id, Role: types.RoleAssistant, Text: text, Image: image, Timestamp: time.Now(),
	}
}

func TestMemoryStore_AppendAndMessages(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "hello", nil)))
	require.NoError(t, store.Append(ctx, assistantMsg("m2", "hi there", nil)))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)
}

func TestMemoryStore_AppendInvalid(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Append(ctx, types.ChatMessage{Role: types.RoleUser, Text: "no id"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	err = store.Append(ctx, types.ChatMessage{ID: "m1", Text: "no role"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestMemoryStore_MessagesReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "hello", []byte{1, 2, 3})))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	msgs[0].Image[0] = 99
	msgs[0].Text = "mutated"

	again, err := store.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0].Image[0])
	assert.Equal(t, "hello", again[0].Text)
}

func TestMemoryStore_Snapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "what is this?", []byte{1})))
	require.NoError(t, store.Append(ctx, assistantMsg("m2", "a plant", nil)))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, types.HistoryEntry{Role: types.RoleUser, Text: "what is this?"}, snap[0])
	assert.Equal(t, types.HistoryEntry{Role: types.RoleAssistant, Text: "a plant"}, snap[1])
}

func TestMemoryStore_LastImage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	img, err := store.LastImage(ctx)
	require.NoError(t, err)
	assert.Nil(t, img)

	require.NoError(t, store.Append(ctx, userMsg("m1", "a", []byte{1})))
	require.NoError(t, store.Append(ctx, assistantMsg("m2", "b", []byte{2})))
	require.NoError(t, store.Append(ctx, userMsg("m3", "c", nil)))

	img, err = store.LastImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, img)
}

func TestMemoryStore_BackfillImage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "first", nil)))
	require.NoError(t, store.Append(ctx, assistantMsg("m2", "answer", nil)))
	require.NoError(t, store.Append(ctx, userMsg("m3", "second", nil)))

	require.NoError(t, store.BackfillImage(ctx, []byte{7, 8}))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	// Only the most recent user message gains the image.
	assert.Nil(t, msgs[0].Image)
	assert.Nil(t, msgs[1].Image)
	assert.Equal(t, []byte{7, 8}, msgs[2].Image)
}

func TestMemoryStore_BackfillSkipsMessagesWithImages(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "bare", nil)))
	require.NoError(t, store.Append(ctx, userMsg("m2", "has one", []byte{1})))

	require.NoError(t, store.BackfillImage(ctx, []byte{9}))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	// The newest user message already carries an image; the older bare one
	// is the backfill target.
	assert.Equal(t, []byte{9}, msgs[0].Image)
	assert.Equal(t, []byte{1}, msgs[1].Image)
}

func TestMemoryStore_BackfillNoTargetNoop(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, assistantMsg("m1", "summary", nil)))
	require.NoError(t, store.BackfillImage(ctx, []byte{1}))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	assert.Nil(t, msgs[0].Image)

	// Empty image is a no-op too.
	require.NoError(t, store.BackfillImage(ctx, nil))
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, userMsg("m1", "hello", nil)))
	require.NoError(t, store.Clear(ctx))

	msgs, err := store.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

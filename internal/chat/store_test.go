package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	store, err := NewStore([]string{"general", "random"}, limit)
	require.NoError(t, err)
	return store
}

func TestStoreAppend(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	assert.Equal(t, "general", msg.Room)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "c1", msg.SenderID)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, []string{"c1"}, msg.ReadBy, "sender has read their own message")
	assert.Empty(t, msg.Reactions)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestStoreAppendUnknownRoom(t *testing.T) {
	store := newTestStore(t, 100)

	_, err := store.Append("nowhere", "c1", "alice", MessageKindText, "hi", nil)
	assert.ErrorIs(t, err, ErrNotARoom)
}

func TestStoreAppendFileMessage(t *testing.T) {
	store := newTestStore(t, 100)

	file := &FilePayload{URL: "/uploads/abc", Type: "image/png", OriginalName: "cat.png"}
	msg, err := store.Append("general", "c1", "alice", MessageKindFile, "", file)
	require.NoError(t, err)

	assert.Equal(t, MessageKindFile, msg.Kind)
	assert.Equal(t, file, msg.File)
}

func TestStoreIDsIncrease(t *testing.T) {
	store := newTestStore(t, 100)

	var last int64
	for i := 0; i < 5; i++ {
		msg, err := store.Append("general", "c1", "alice", MessageKindText, "m", nil)
		require.NoError(t, err)
		assert.Greater(t, msg.ID, last)
		last = msg.ID
	}
}

func TestStoreEviction(t *testing.T) {
	store := newTestStore(t, 100)

	var first int64
	for i := 0; i < 100; i++ {
		msg, err := store.Append("general", "c1", "alice", MessageKindText, fmt.Sprintf("m%d", i), nil)
		require.NoError(t, err)
		if i == 0 {
			first = msg.ID
		}
	}
	assert.Equal(t, 100, store.Len("general"))

	// The 101st message evicts exactly the oldest.
	_, err := store.Append("general", "c1", "alice", MessageKindText, "m100", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, store.Len("general"))

	history, err := store.History("general")
	require.NoError(t, err)
	assert.Equal(t, "m1", history[0].Text)

	// Operations on the evicted id report NotFound.
	_, _, err = store.MarkRead("general", first, "c2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.ToggleReaction("general", first, "c2", "👍")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreEvictionIsPerRoom(t *testing.T) {
	store := newTestStore(t, 2)

	for i := 0; i < 3; i++ {
		_, err := store.Append("general", "c1", "alice", MessageKindText, "m", nil)
		require.NoError(t, err)
	}
	_, err := store.Append("random", "c1", "alice", MessageKindText, "m", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len("general"))
	assert.Equal(t, 1, store.Len("random"))
}

func TestStoreMarkReadIdempotent(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	readBy, changed, err := store.MarkRead("general", msg.ID, "c2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"c1", "c2"}, readBy)

	readBy, changed, err = store.MarkRead("general", msg.ID, "c2")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"c1", "c2"}, readBy)
}

func TestStoreMarkReadBySenderUnchanged(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	readBy, changed, err := store.MarkRead("general", msg.ID, "c1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"c1"}, readBy)
}

func TestStoreMarkReadUnknownMessage(t *testing.T) {
	store := newTestStore(t, 100)

	_, _, err := store.MarkRead("general", 12345, "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.MarkRead("nowhere", 1, "c1")
	assert.ErrorIs(t, err, ErrNotARoom)
}

func TestStoreToggleReactionInvolution(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	reactions, err := store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"👍": {"c2"}}, reactions)

	// The second toggle removes the reaction and the emptied emoji key.
	reactions, err = store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	assert.Empty(t, reactions)
}

func TestStoreToggleReactionIndependentEmoji(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	_, err = store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	reactions, err := store.ToggleReaction("general", msg.ID, "c2", "🎉")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"👍": {"c2"}, "🎉": {"c2"}}, reactions)

	reactions, err = store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"🎉": {"c2"}}, reactions)
}

func TestStoreToggleReactionMultipleUsers(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	_, err = store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	reactions, err := store.ToggleReaction("general", msg.ID, "c3", "👍")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"👍": {"c2", "c3"}}, reactions)

	reactions, err = store.ToggleReaction("general", msg.ID, "c2", "👍")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"👍": {"c3"}}, reactions)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := newTestStore(t, 100)

	msg, err := store.Append("general", "c1", "alice", MessageKindText, "hi", nil)
	require.NoError(t, err)

	msg.ReadBy[0] = "tampered"
	msg.Reactions["💣"] = []string{"tampered"}

	history, err := store.History("general")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, history[0].ReadBy)
	assert.Empty(t, history[0].Reactions)
}

func TestStoreRejectsNonPositiveLimit(t *testing.T) {
	_, err := NewStore([]string{"general"}, 0)
	assert.Error(t, err)
}

package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repomesh/repomesh/core"
)

var _ core.ConversationStore = (*FileStore)(nil)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFileStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.Create([]string{"auth-service", "payments"})
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, []string{"auth-service", "payments"}, conv.ParticipantNames())

	got, err := store.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)

	_, err = store.Get("nope")
	assert.ErrorIs(t, err, core.ErrConversationNotFound)
}

func TestFileStore_FreshIDs(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Create(nil)
	require.NoError(t, err)
	b, err := store.Create(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	conv, err := store.Create([]string{"svc"})
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(conv.ID, core.NewMessage(core.RoleUser, "hello all")))
	require.NoError(t, store.AddParticipant(conv.ID, "payments", "prior context"))

	// A fresh store over the same directory lazily loads an identical record.
	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)

	got, err := reloaded.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc", "payments"}, got.ParticipantNames())

	msgs := got.RecentMessages(0)
	var contents []string
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, strings.Join(contents, "\n"), "hello all")
	assert.Contains(t, strings.Join(contents, "\n"), "prior context")
	assert.True(t, conv.CreatedAt.Equal(got.CreatedAt))
}

func TestFileStore_IdempotentJoinPersisted(t *testing.T) {
	store := newTestStore(t)
	conv, err := store.Create([]string{"svc"})
	require.NoError(t, err)

	require.NoError(t, store.AddParticipant(conv.ID, "svc", ""))
	require.NoError(t, store.AddParticipant(conv.ID, "svc", ""))

	got, err := store.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc"}, got.ParticipantNames())

	joins := 0
	for _, msg := range got.RecentMessages(0) {
		if msg.Role == core.RoleSystem && strings.Contains(msg.Content, "joined") {
			joins++
		}
	}
	assert.Equal(t, 1, joins)
}

func TestFileStore_RemoveParticipantKeepsLog(t *testing.T) {
	store := newTestStore(t)
	conv, err := store.Create([]string{"svc"})
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(conv.ID, core.NewMessage(core.RoleUser, "keep me")))

	require.NoError(t, store.RemoveParticipant(conv.ID, "svc"))

	got, err := store.Get(conv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ParticipantNames())

	// The conversation stays active with its log intact.
	msgs, err := store.RecentMessages(conv.ID, 0)
	require.NoError(t, err)
	var sawKept bool
	for _, m := range msgs {
		if m.Content == "keep me" {
			sawKept = true
		}
	}
	assert.True(t, sawKept)
}

func TestFileStore_RecentMessagesOrder(t *testing.T) {
	store := newTestStore(t)
	conv, err := store.Create(nil)
	require.NoError(t, err)

	for _, c := range []string{"A", "B", "C"} {
		require.NoError(t, store.AppendMessage(conv.ID, core.NewMessage(core.RoleUser, c)))
	}

	got, err := store.RecentMessages(conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Content)
	assert.Equal(t, "C", got[1].Content)
}

func TestFileStore_JoinContext(t *testing.T) {
	store := newTestStore(t)
	conv, err := store.Create(nil)
	require.NoError(t, err)

	ctx, err := store.JoinContext(conv.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, core.NoConversationHistory, ctx)

	require.NoError(t, store.AddParticipant(conv.ID, "svc", ""))
	ctx, err = store.JoinContext(conv.ID, 20)
	require.NoError(t, err)
	assert.Contains(t, ctx, "Current participants: svc")
}

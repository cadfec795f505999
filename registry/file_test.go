package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repomesh/repomesh/core"
)

var _ core.AgentStore = (*FileStore)(nil)

func newTestStore(t *testing.T, optFns ...func(o *Options)) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), optFns...)
	require.NoError(t, err)
	return store
}

func TestFileStore_RegisterAndGet(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Register(core.AgentConfig{
		Name:        "auth-service",
		RepoPath:    "./repos/auth-service",
		Description: "authentication backend",
		Language:    "go",
		EntryPoints: []string{"cmd/server/main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "auth-service", rec.Name())
	assert.False(t, rec.Config.CreatedAt.IsZero())

	got, err := store.Get("auth-service")
	require.NoError(t, err)
	assert.Equal(t, rec.Config, got.Config)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestFileStore_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	require.NoError(t, err)

	_, err = store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/other"})
	assert.ErrorIs(t, err, core.ErrAgentExists)
}

func TestFileStore_OverwritePolicy(t *testing.T) {
	store := newTestStore(t, func(o *Options) { o.Overwrite = true })

	_, err := store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	require.NoError(t, err)

	rec, err := store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, "./repos/elsewhere", rec.RepoPath())
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	config := core.AgentConfig{
		Name:         "payments",
		RepoPath:     "./repos/payments",
		Language:     "go",
		Framework:    "echo",
		EntryPoints:  []string{"main.go", "worker/main.go"},
		SystemPrompt: "You own the payments repository.",
	}
	_, err = store.Register(config)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage("payments", core.NewMessage(core.RoleUser, "add retries")))
	require.NoError(t, store.AppendMessage("payments", core.NewAgentMessage(core.RoleAssistant, "done", "payments")))

	// A fresh store over the same directory reconstructs an identical record.
	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)

	got, err := reloaded.Get("payments")
	require.NoError(t, err)

	want, err := store.Get("payments")
	require.NoError(t, err)

	assert.Equal(t, want.Config.Name, got.Config.Name)
	assert.Equal(t, want.Config.EntryPoints, got.Config.EntryPoints)
	assert.Equal(t, want.Config.SystemPrompt, got.Config.SystemPrompt)
	assert.True(t, want.Config.CreatedAt.Equal(got.Config.CreatedAt))

	wantHistory, gotHistory := want.History(), got.History()
	require.Len(t, gotHistory, len(wantHistory))
	for i := range wantHistory {
		assert.Equal(t, wantHistory[i].Role, gotHistory[i].Role)
		assert.Equal(t, wantHistory[i].Content, gotHistory[i].Content)
		assert.Equal(t, wantHistory[i].AgentID, gotHistory[i].AgentID)
		assert.True(t, wantHistory[i].Timestamp.Equal(gotHistory[i].Timestamp))
	}
}

func TestFileStore_LoadBypassesIndex(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage("svc", core.NewMessage(core.RoleUser, "hello")))

	store.Unregister("svc")
	_, err = store.Get("svc")
	require.ErrorIs(t, err, core.ErrAgentNotFound)

	// The durable record survives unregistration.
	rec, err := store.Load("svc")
	require.NoError(t, err)
	assert.Equal(t, "svc", rec.Name())
	assert.Len(t, rec.History(), 1)
}

func TestFileStore_Summarize(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	require.NoError(t, err)

	summary, err := store.Summarize("svc", 10)
	require.NoError(t, err)
	assert.Equal(t, core.NoAgentHistory, summary)

	require.NoError(t, store.AppendMessage("svc", core.NewMessage(core.RoleUser, "status?")))
	summary, err = store.Summarize("svc", 10)
	require.NoError(t, err)
	assert.Contains(t, summary, "[user]: status?")
}

func TestFileStore_List(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := store.Register(core.AgentConfig{Name: name, RepoPath: "./repos/" + name})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, store.List())
}

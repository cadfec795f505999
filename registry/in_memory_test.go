package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repomesh/repomesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.AgentStore = (*InMemoryStore)(nil)

func TestInMemoryStore_Basics(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	require.NoError(t, err)

	_, err = store.Register(core.AgentConfig{Name: "svc", RepoPath: "./repos/svc"})
	assert.ErrorIs(t, err, core.ErrAgentExists)

	require.NoError(t, store.AppendMessage("svc", core.NewMessage(core.RoleUser, "hi")))
	rec, err := store.Get("svc")
	require.NoError(t, err)
	assert.Len(t, rec.History(), 1)

	// Returned records are clones.
	rec.AddMessage(core.NewMessage(core.RoleUser, "local only"))
	again, err := store.Get("svc")
	require.NoError(t, err)
	assert.Len(t, again.History(), 1)

	assert.True(t, store.Unregister("svc"))
	assert.False(t, store.Unregister("svc"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	conf, err := New[Config]("REPOMESH_TEST_DEFAULTS")
	require.NoError(t, err)

	assert.Equal(t, "claude", conf.ClaudePath)
	assert.Equal(t, ".", conf.ProjectRoot)
	assert.Equal(t, "balanced", conf.DefaultModel)
	assert.Equal(t, time.Duration(0), conf.InvokeTimeout)
	assert.False(t, conf.SkipPermissions)
	assert.False(t, conf.OverwriteAgents)
	assert.Equal(t, "info", conf.LogLevel)
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("REPOMESH_CLAUDE_CODE_PATH", "/opt/bin/claude")
	t.Setenv("REPOMESH_INVOKE_TIMEOUT", "90s")
	t.Setenv("REPOMESH_SKIP_PERMISSIONS", "true")

	conf, err := New[Config]("REPOMESH")
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/claude", conf.ClaudePath)
	assert.Equal(t, 90*time.Second, conf.InvokeTimeout)
	assert.True(t, conf.SkipPermissions)
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "modelfetch dev")
}

func TestFetchCommand_BadPlanPath(t *testing.T) {
	t.Setenv("MF_TARGET_DIR", t.TempDir())
	t.Setenv("MF_WEB_ENABLED", "false")
	t.Setenv("MF_TELEMETRY_ENABLED", "false")

	root := NewRootCmd()
	root.SetArgs([]string{"fetch", "--plan", "/nonexistent/plan.yaml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read plan")
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
}

func TestVersionCmd_DefaultVersion(t *testing.T) {
	t.Setenv("SCRIPTSTEP_VERSION", "")

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "scriptstep "+DefaultVersion+"\n", stdout)
}

func TestVersionCmd_FromEnv(t *testing.T) {
	t.Setenv("SCRIPTSTEP_VERSION", "v9.9.9")

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "scriptstep v9.9.9\n", stdout)
}

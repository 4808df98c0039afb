package stepconfig

import (
	"testing"

	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LegacyCommand(t *testing.T) {
	cfg, err := Load([]byte(`command: "echo hi"`))
	require.NoError(t, err)

	src, ok := cfg.Source.(*scriptsource.StringSource)
	require.True(t, ok, "expected inline source, got %T", cfg.Source)
	assert.Equal(t, "echo hi", src.Script)
}

func TestUpgrade(t *testing.T) {
	cmd := "echo hi"
	p := &Persisted{Command: &cmd, Bindings: "x=5"}

	assert.True(t, Upgrade(p))
	assert.Nil(t, p.Command)
	require.NotNil(t, p.ScriptSource)
	assert.Equal(t, scriptsource.TypeString, p.ScriptSource.Type)
	assert.Equal(t, "echo hi", p.ScriptSource.Script)
	assert.Equal(t, CurrentVersion, p.Version)
	assert.Equal(t, "x=5", p.Bindings)
}

func TestUpgrade_Idempotent(t *testing.T) {
	cmd := "1 + 1"
	once := &Persisted{Command: &cmd, Classpath: "/opt/lib"}
	Upgrade(once)

	cmd2 := "1 + 1"
	twice := &Persisted{Command: &cmd2, Classpath: "/opt/lib"}
	Upgrade(twice)
	assert.False(t, Upgrade(twice))

	assert.Equal(t, once, twice)
}

func TestUpgrade_LegacyOverridesSource(t *testing.T) {
	cmd := "legacy"
	p := &Persisted{
		Command:      &cmd,
		ScriptSource: &scriptsource.Descriptor{Type: scriptsource.TypeFile, Path: "build.js"},
	}
	Upgrade(p)
	assert.Equal(t, &scriptsource.Descriptor{Type: scriptsource.TypeString, Script: "legacy"}, p.ScriptSource)
}

func TestUpgrade_CurrentDocumentUntouched(t *testing.T) {
	p := &Persisted{
		Version:      CurrentVersion,
		ScriptSource: &scriptsource.Descriptor{Type: scriptsource.TypeFile, Path: "build.js"},
	}
	assert.False(t, Upgrade(p))
	assert.Equal(t, "build.js", p.ScriptSource.Path)
}

func TestLoad_Current(t *testing.T) {
	payload := `
version: 1
scriptSource:
  type: file
  path: scripts/check.js
bindings: |
  x=5
  y=6
classpath: /opt/scripts
`
	cfg, err := Load([]byte(payload))
	require.NoError(t, err)

	src, ok := cfg.Source.(*scriptsource.FileSource)
	require.True(t, ok)
	assert.Equal(t, "scripts/check.js", src.Path)
	assert.Equal(t, "x=5\ny=6\n", cfg.Bindings)
	assert.Equal(t, "/opt/scripts", cfg.Classpath)
}

func TestLoad_JSON(t *testing.T) {
	cfg, err := Load([]byte(`{"scriptSource": {"type": "string", "script": "true"}, "bindings": null}`))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Bindings)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "no source", payload: "bindings: x=1"},
		{name: "unknown source type", payload: "scriptSource:\n  type: url\n"},
		{name: "file without path", payload: "scriptSource:\n  type: file\n"},
		{name: "unknown version", payload: "version: 7\ncommand: x\n"},
		{name: "not yaml", payload: "scriptSource: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := &Config{
		Source:    scriptsource.NewStringSource("out.println('hi')"),
		Bindings:  "x=5",
		Classpath: "/opt/lib",
	}

	payload, err := Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "command")
	assert.Contains(t, string(payload), "version: 1")

	back, err := Load(payload)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

package interpreter

import (
	"context"
	"testing"
	"time"

	"github.com/rocketship-ai/scriptstep/internal/dsl"
	"github.com/rocketship-ai/scriptstep/internal/plugins"
	_ "github.com/rocketship-ai/scriptstep/internal/plugins/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLocal(t *testing.T) {
	build := dsl.Build{
		Name: "local",
		Steps: []dsl.Step{
			scriptStep("ok", "out.println('hello'); true"),
			scriptStep("fails", "false"),
			scriptStep("skipped", "true"),
		},
	}

	result, err := RunLocal(context.Background(), build, plugins.GetPlugin)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].Success)
	assert.Equal(t, "hello\n", result.Steps[0].Log)
	assert.False(t, result.Steps[1].Success)
}

func TestRunLocal_UnknownPlugin(t *testing.T) {
	build := dsl.Build{
		Name:  "local",
		Steps: []dsl.Step{{Name: "x", Plugin: "missing", Config: map[string]interface{}{}}},
	}

	_, err := RunLocal(context.Background(), build, plugins.GetPlugin)
	assert.Error(t, err)
}

func TestRunLocal_EvaluationError(t *testing.T) {
	build := dsl.Build{
		Name:  "local",
		Steps: []dsl.Step{scriptStep("throws", "throw new Error('nope')")},
	}

	result, err := RunLocal(context.Background(), build, plugins.GetPlugin)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Steps[0].Error, "nope")
	assert.Contains(t, result.Steps[0].Error, `step "throws"`)
}

func TestRunLocal_Interrupted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	build := dsl.Build{
		Name: "local",
		Steps: []dsl.Step{
			scriptStep("spin", "while (true) {}"),
			scriptStep("skipped", "true"),
		},
	}

	result, err := RunLocal(ctx, build, plugins.GetPlugin)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Contains(t, result.Steps[0].Error, "script interrupted")
	assert.NotContains(t, result.Steps[0].Error, "evaluation error")
}

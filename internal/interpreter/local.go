package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketship-ai/scriptstep/internal/dsl"
	"github.com/rocketship-ai/scriptstep/internal/plugins"
)

// PluginLookup finds the plugin for a step type
type PluginLookup func(pluginType string) (plugins.Plugin, bool)

// RunLocal runs a build in the current process, calling plugin activities
// directly. It follows the same rules as BuildWorkflow.
func RunLocal(ctx context.Context, build dsl.Build, lookup PluginLookup) (BuildResult, error) {
	result := BuildResult{Name: build.Name, Success: true}

	for _, step := range build.Steps {
		p, ok := lookup(step.Plugin)
		if !ok {
			return result, fmt.Errorf("step %q: unknown plugin %s", step.Name, step.Plugin)
		}

		slog.Info("executing step", "build", build.Name, "step", step.Name)
		out, err := p.Activity(ctx, map[string]interface{}{
			"name":      step.Name,
			"plugin":    step.Plugin,
			"config":    step.Config,
			"workspace": build.Workspace,
		})
		if err != nil {
			result.Success = false
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Error: ExtractCleanError(err)})
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, nil
		}

		resp, err := decodeResponse(out)
		if err != nil {
			return result, fmt.Errorf("step %q: %w", step.Name, err)
		}

		result.Steps = append(result.Steps, StepResult{
			Name:    step.Name,
			Success: resp.Success,
			Result:  resp.Result,
			Log:     resp.Log,
		})
		if !resp.Success {
			result.Success = false
			return result, nil
		}
	}

	return result, nil
}

// decodeResponse round-trips a plugin response through JSON, as Temporal would
func decodeResponse(out interface{}) (stepResponse, error) {
	var resp stepResponse
	blob, err := json.Marshal(out)
	if err != nil {
		return resp, fmt.Errorf("failed to encode step response: %w", err)
	}
	if err := json.Unmarshal(blob, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode step response: %w", err)
	}
	return resp, nil
}

package interpreter

import (
	"fmt"
	"time"

	"github.com/rocketship-ai/scriptstep/internal/dsl"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// StepResult is the reported outcome of one step
type StepResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Log     string `json:"log,omitempty"`
}

// BuildResult is the outcome of a build
type BuildResult struct {
	Name    string       `json:"name"`
	Success bool         `json:"success"`
	Steps   []StepResult `json:"steps"`
}

// stepResponse mirrors the fields of a plugin response the workflow needs
type stepResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Log     string `json:"log"`
}

// BuildWorkflow runs the steps of a build in order and stops at the first
// failed step. Step failures are reported in the result, not as workflow errors.
func BuildWorkflow(ctx workflow.Context, build dsl.Build) (BuildResult, error) {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: time.Hour,
		HeartbeatTimeout:    time.Minute,
		WaitForCancellation: true,
		RetryPolicy: &temporal.RetryPolicy{
			// scripts are never retried automatically
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := BuildResult{Name: build.Name, Success: true}
	for _, step := range build.Steps {
		logger.Info(fmt.Sprintf("Executing build %q, step %q", build.Name, step.Name))

		params := map[string]interface{}{
			"name":      step.Name,
			"plugin":    step.Plugin,
			"config":    step.Config,
			"workspace": build.Workspace,
		}

		var resp stepResponse
		err := workflow.ExecuteActivity(ctx, step.Plugin, params).Get(ctx, &resp)
		if err != nil {
			result.Success = false
			result.Steps = append(result.Steps, StepResult{
				Name:  step.Name,
				Error: ExtractCleanError(err),
			})
			logger.Error(fmt.Sprintf("Step %q FAILED", step.Name), "error", err)
			if ctx.Err() != nil {
				return result, temporal.NewCanceledError(build.Name)
			}
			return result, nil
		}

		result.Steps = append(result.Steps, StepResult{
			Name:    step.Name,
			Success: resp.Success,
			Result:  resp.Result,
			Log:     resp.Log,
		})
		if !resp.Success {
			result.Success = false
			logger.Info(fmt.Sprintf("Step %q FAILED", step.Name))
			return result, nil
		}

		logger.Info(fmt.Sprintf("Step %q PASSED", step.Name))
	}

	return result, nil
}

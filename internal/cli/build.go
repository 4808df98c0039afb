package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/rocketship-ai/scriptstep/internal/dsl"
	"github.com/rocketship-ai/scriptstep/internal/interpreter"
	"github.com/rocketship-ai/scriptstep/internal/plugins"
)

// ErrBuildFailed is returned when a build finished with a failed step
var ErrBuildFailed = errors.New("build failed")

// NewBuildCmd creates a new build command
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [build-file]",
		Short: "Run a build",
		Long: `Run the steps of a build file in order, stopping at the first failed step.
By default the build runs in this process. With --remote it is submitted to a
Temporal worker started with the worker binary.

Examples:
  scriptstep build build.yaml                      # Run locally
  scriptstep build build.yaml --remote             # Run on a worker
  scriptstep build build.yaml --json               # Print the result as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}

	cmd.Flags().Bool("remote", false, "Submit the build to a Temporal worker")
	cmd.Flags().Bool("json", false, "Print the build result as JSON")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	remote, _ := cmd.Flags().GetBool("remote")
	asJSON, _ := cmd.Flags().GetBool("json")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read build file: %w", err)
	}
	build, err := dsl.ParseYAML(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	// workspaces are relative to the build file
	if !filepath.IsAbs(build.Workspace) {
		build.Workspace = filepath.Join(filepath.Dir(args[0]), build.Workspace)
	}
	if build.Workspace, err = filepath.Abs(build.Workspace); err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var result interpreter.BuildResult
	if remote {
		result, err = runRemoteBuild(ctx, LoadSettings(), build)
	} else {
		result, err = interpreter.RunLocal(ctx, build, plugins.GetPlugin)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printBuildResult(cmd, result, remote)
	}

	if !result.Success {
		return ErrBuildFailed
	}
	return nil
}

// runRemoteBuild starts the build workflow and waits for it. Interrupting the
// command cancels the workflow, which interrupts the running script.
func runRemoteBuild(ctx context.Context, settings Settings, build dsl.Build) (interpreter.BuildResult, error) {
	var result interpreter.BuildResult

	c, err := client.Dial(client.Options{
		HostPort: settings.TemporalHost,
		Logger:   Logger,
	})
	if err != nil {
		return result, fmt.Errorf("unable to connect to temporal at %s: %w", settings.TemporalHost, err)
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("build-%s-%s", build.Name, uuid.NewString()),
		TaskQueue: settings.TaskQueue,
	}, interpreter.BuildWorkflow, build)
	if err != nil {
		return result, fmt.Errorf("failed to start build: %w", err)
	}
	Logger.Info("build submitted", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	err = run.Get(ctx, &result)
	if ctx.Err() != nil {
		cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := c.CancelWorkflow(cancelCtx, run.GetID(), run.GetRunID()); cerr != nil {
			Logger.Error("failed to cancel build", "workflow_id", run.GetID(), "error", cerr)
		}
		return result, ctx.Err()
	}
	if err != nil {
		return result, fmt.Errorf("build %s: %w", build.Name, err)
	}
	return result, nil
}

func printBuildResult(cmd *cobra.Command, result interpreter.BuildResult, showLogs bool) {
	out := cmd.OutOrStdout()
	for _, step := range result.Steps {
		// local builds already streamed their console
		if showLogs && step.Log != "" {
			_, _ = fmt.Fprint(out, step.Log)
		}
		switch {
		case step.Error != "":
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", color.RedString("✗"), step.Name, step.Error)
		case step.Success:
			_, _ = fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), step.Name)
		default:
			_, _ = fmt.Fprintf(out, "%s %s\n", color.RedString("✗"), step.Name)
		}
	}

	passed := 0
	for _, step := range result.Steps {
		if step.Success {
			passed++
		}
	}
	_, _ = fmt.Fprintf(out, "\nBuild %s: %d of %d step(s) passed\n", result.Name, passed, len(result.Steps))
}

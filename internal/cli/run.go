package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/scriptstep/internal/plugins/script"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/executors"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
	"github.com/rocketship-ai/scriptstep/internal/store"
)

// ErrStepFailed is returned when a script ran but reported failure
var ErrStepFailed = errors.New("step failed")

// NewRunCmd creates a new run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [step-file]",
		Short: "Run a system script step",
		Long: `Run a single system script step in this process.
The step file should be a YAML or JSON step configuration. Legacy configurations
carrying a "command" field are upgraded before running.

Examples:
  scriptstep run step.yaml                         # Run a step file
  scriptstep run step.yaml -w ./checkout           # Resolve file scripts against a workspace
  scriptstep run nightly --stored                  # Run a step saved with "steps configure"`,
		Args: cobra.ExactArgs(1),
		RunE: runStep,
	}

	cmd.Flags().StringP("workspace", "w", ".", "Build workspace directory")
	cmd.Flags().Bool("stored", false, "Treat the argument as the name of a stored step")
	cmd.Flags().Bool("no-platform-modules", false, "Only resolve modules from the classpath")

	return cmd
}

func runStep(cmd *cobra.Command, args []string) error {
	workspace, _ := cmd.Flags().GetString("workspace")
	stored, _ := cmd.Flags().GetBool("stored")
	noPlatform, _ := cmd.Flags().GetBool("no-platform-modules")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadStep(ctx, args[0], stored)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	var opts []script.Option
	if !noPlatform {
		opts = append(opts, script.WithLoader(modules.Platform()))
	}
	step := script.New(cfg, opts...)

	Logger.Debug("running step", "step", args[0], "workspace", dir, "source", cfg.Source.Type())
	success, err := step.Perform(ctx, script.Build{
		Workspace: scriptsource.Workspace{Dir: dir},
		Log:       cmd.OutOrStdout(),
	})

	out := cmd.ErrOrStderr()
	switch {
	case errors.Is(err, executors.ErrInterrupted):
		_, _ = fmt.Fprintf(out, "%s Step interrupted\n", color.YellowString("!"))
		return err
	case err != nil:
		_, _ = fmt.Fprintf(out, "%s Step errored\n", color.RedString("✗"))
		return err
	case !success:
		_, _ = fmt.Fprintf(out, "%s Step failed\n", color.RedString("✗"))
		return ErrStepFailed
	}

	_, _ = fmt.Fprintf(out, "%s Step passed\n", color.GreenString("✓"))
	return nil
}

// loadStep reads a step configuration from a file or, when stored is set, from the store
func loadStep(ctx context.Context, arg string, stored bool) (*stepconfig.Config, error) {
	if stored {
		settings := LoadSettings()
		s, err := store.Open(ctx, settings.DBDriver, settings.DBDSN)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		return s.Load(ctx, arg)
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read step file: %w", err)
	}
	cfg, err := stepconfig.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}
	return cfg, nil
}

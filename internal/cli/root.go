package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates a new root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scriptstep",
		Short: "System script build step",
		Long:  `scriptstep runs administrator-authored build scripts in-process and turns their result into a pass/fail outcome.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				_ = os.Setenv("SCRIPTSTEP_LOG", "DEBUG")
			}

			// Initialize logging after potentially setting the debug env var
			InitLogging()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(
		NewRunCmd(),
		NewBuildCmd(),
		NewValidateCmd(),
		NewMigrateCmd(),
		NewStepsCmd(),
		NewTokenCmd(),
		NewVersionCmd(),
	)

	return cmd
}

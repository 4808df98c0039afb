package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DefaultVersion is reported when SCRIPTSTEP_VERSION is not set
const DefaultVersion = "v0.1.0"

// NewVersionCmd creates a new version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of scriptstep",
		Run: func(cmd *cobra.Command, args []string) {
			version := os.Getenv("SCRIPTSTEP_VERSION")
			if version == "" {
				version = DefaultVersion
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scriptstep %s\n", version)
		},
	}
}

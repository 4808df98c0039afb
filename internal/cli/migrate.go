package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
)

// NewMigrateCmd creates a new migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [file...]",
		Short: "Upgrade legacy step configurations",
		Long: `Upgrade step configurations written in the legacy layout, which stored the
script as a single "command" field, to the current layout.
Without --write the upgraded configuration is printed.

Examples:
  scriptstep migrate step.yaml                     # Print the upgraded configuration
  scriptstep migrate --write steps/*.yaml          # Rewrite files in place`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMigrate,
	}

	cmd.Flags().Bool("write", false, "Rewrite files in place")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetBool("write")
	out := cmd.OutOrStdout()

	for _, file := range args {
		data, migrated, err := migrateFile(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		if !write {
			if len(args) > 1 {
				_, _ = fmt.Fprintf(out, "# %s\n", file)
			}
			_, _ = out.Write(data)
			continue
		}

		if !migrated {
			Logger.Info("already current", "file", file)
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, data, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		Logger.Info("migrated", "file", file)
	}

	return nil
}

// migrateFile returns the current form of a step file and whether the legacy
// command had to be moved
func migrateFile(file string) ([]byte, bool, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}

	p, err := stepconfig.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	migrated := stepconfig.Upgrade(p)

	cfg, err := stepconfig.FromPersisted(p)
	if err != nil {
		return nil, false, err
	}
	data, err := stepconfig.Marshal(cfg)
	if err != nil {
		return nil, false, err
	}
	return data, migrated, nil
}

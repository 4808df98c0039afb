package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/scriptstep/internal/plugins/script/executors"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
)

// NewValidateCmd creates a new validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file_or_directory]",
		Short: "Validate step configurations against the JSON schema",
		Long: `Validate one or more step configuration files against the JSON schema.
Legacy configurations are accepted; use "scriptstep migrate" to rewrite them.

Examples:
  scriptstep validate step.yaml                    # Validate a single file
  scriptstep validate ./steps/                     # Validate all YAML and JSON files in a directory
  scriptstep validate a.yaml b.json                # Validate multiple files`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("please specify at least one file or directory to validate")
	}

	files, invalid := collectConfigFiles(args)
	if len(files) == 0 {
		return fmt.Errorf("no step configuration files found to validate")
	}

	Logger.Info("validating files", "count", len(files))

	valid := 0
	for _, file := range files {
		if err := validateFile(file); err != nil {
			Logger.Error("validation failed", "file", file, "error", err)
			invalid++
		} else {
			Logger.Info("validation passed", "file", file)
			valid++
		}
	}

	Logger.Info("validation complete", "valid", valid, "invalid", invalid, "total", len(files))

	if invalid > 0 {
		return fmt.Errorf("validation failed for %d file(s)", invalid)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ All %d file(s) passed validation\n", valid)
	return nil
}

// collectConfigFiles expands directories into the YAML and JSON files they
// contain and counts paths that could not be read
func collectConfigFiles(args []string) ([]string, int) {
	var files []string
	failed := 0

	for _, arg := range args {
		stat, err := os.Stat(arg)
		if err != nil {
			Logger.Error("failed to access path", "path", arg, "error", err)
			failed++
			continue
		}

		if !stat.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			switch filepath.Ext(path) {
			case ".yaml", ".yml", ".json":
				if !info.IsDir() {
					files = append(files, path)
				}
			}
			return nil
		})
		if err != nil {
			Logger.Error("failed to scan directory", "path", arg, "error", err)
			failed++
		}
	}

	return files, failed
}

func validateScript(src scriptsource.Source) error {
	script, err := scriptsource.ReadAll(context.Background(), src, scriptsource.Workspace{})
	if err != nil {
		return err
	}
	executor, err := executors.NewExecutor(executors.LanguageJavaScript, executors.Config{})
	if err != nil {
		return err
	}
	return executor.ValidateScript(script)
}

func validateFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	p, err := stepconfig.Decode(data)
	if err != nil {
		return err
	}
	legacy := stepconfig.Upgrade(p)
	cfg, err := stepconfig.FromPersisted(p)
	if err != nil {
		return err
	}

	// file scripts live in a build workspace and are checked when they run
	if cfg.Source.Type() == scriptsource.TypeString {
		if err := validateScript(cfg.Source); err != nil {
			return err
		}
	}

	Logger.Debug("file details", "version", p.Version, "legacy", legacy)
	return nil
}

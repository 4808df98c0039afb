package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/scriptstep/internal/auth"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"
	"github.com/rocketship-ai/scriptstep/internal/store"
)

// NewStepsCmd creates the steps command group for stored step configurations
func NewStepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Manage stored step configurations",
		Long: `Manage step configurations kept in the configuration store.
The store is selected with SCRIPTSTEP_DB_DRIVER and SCRIPTSTEP_DB_DSN.
Changing a step requires an administrator token (see "scriptstep token").`,
	}

	cmd.PersistentFlags().String("token", "", "Administrator token (defaults to SCRIPTSTEP_TOKEN)")

	cmd.AddCommand(
		newStepsConfigureCmd(),
		newStepsShowCmd(),
		newStepsListCmd(),
		newStepsDeleteCmd(),
	)

	return cmd
}

func newStepsConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure [name]",
		Short: "Create or replace a stored step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read step file: %w", err)
			}
			cfg, err := stepconfig.Load(data)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			desc, err := scriptsource.Encode(cfg.Source)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			step, err := script.NewDescriptor(modules.Platform()).NewInstance(ctx, authorizerFor(cmd), script.Form{
				ScriptSource: desc,
				Bindings:     cfg.Bindings,
				Classpath:    cfg.Classpath,
			})
			if err != nil {
				return err
			}

			return withStore(ctx, func(s *store.Store) error {
				if err := s.Save(ctx, args[0], step.Config()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Step %s saved\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Step configuration file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newStepsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored step in the current layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(s *store.Store) error {
				cfg, err := s.Load(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := stepconfig.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newStepsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(s *store.Store) error {
				names, err := s.List(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newStepsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := auth.CheckAdminPermission(ctx, authorizerFor(cmd)); err != nil {
				return err
			}
			return withStore(ctx, func(s *store.Store) error {
				if err := s.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Step %s deleted\n", args[0])
				return nil
			})
		},
	}
}

// authorizerFor checks the command's token against SCRIPTSTEP_JWT_SECRET
func authorizerFor(cmd *cobra.Command) auth.Authorizer {
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv("SCRIPTSTEP_TOKEN")
	}
	secret := LoadSettings().JWTSecret
	if secret == "" || token == "" {
		Logger.Debug("no administrator credentials")
		return auth.Static(false)
	}
	return auth.NewTokenAuthorizer([]byte(secret), token)
}

func withStore(ctx context.Context, fn func(s *store.Store) error) error {
	settings := LoadSettings()
	s, err := store.Open(ctx, settings.DBDriver, settings.DBDSN)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}

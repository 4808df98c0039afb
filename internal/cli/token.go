package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/scriptstep/internal/auth"
)

// NewTokenCmd creates a new token command
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [subject]",
		Short: "Issue an operator token",
		Long: `Issue a token signed with SCRIPTSTEP_JWT_SECRET. Tokens carrying the admin
role may configure and delete stored steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := LoadSettings().JWTSecret
			if secret == "" {
				return fmt.Errorf("SCRIPTSTEP_JWT_SECRET is not set")
			}
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := auth.IssueToken([]byte(secret), args[0], roles, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringSlice("role", []string{auth.RoleAdmin}, "Roles granted by the token")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

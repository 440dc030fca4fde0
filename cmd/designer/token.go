package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-designer/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateServe(); err != nil {
				return fmt.Errorf("validating config: %w", err)
			}
			if ttl == 0 {
				ttl = time.Duration(a.cfg.Security.JWT.AccessTokenTTL) * time.Minute
			}
			token, err := auth.GenerateAccessToken(subject, auth.Role(role), a.cfg.Security.JWT.Secret, ttl)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Fprintln(a.stdout, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, the project owner id")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "token role (user or admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default security.jwt.access_token_ttl)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

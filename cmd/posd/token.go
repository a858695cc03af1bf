package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/venezia/venezia-pos/internal/auth"
	"github.com/venezia/venezia-pos/pkg/config"
)

func newTokenCmd() *cobra.Command {
	var (
		userID  string
		role    string
		storeID int64
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch role {
			case auth.RoleAdmin, auth.RoleManager, auth.RoleCashier:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			cfg := config.Load()
			issuer, err := auth.NewIssuer(cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			token, err := issuer.Issue(userID, role, storeID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "cashier", "user id carried in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleCashier, "admin, manager or cashier")
	cmd.Flags().Int64Var(&storeID, "store", 1, "store id carried in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}

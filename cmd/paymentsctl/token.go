package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prashanttechie/portfolio-project/internal/auth"
)

func tokenCmd(v *viper.Viper) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd, "secret", "ADMIN_JWT_SECRET")
			secret := v.GetString("ADMIN_JWT_SECRET")
			if secret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			tok, err := auth.NewTokens(secret, ttl).Issue(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "ops", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().String("secret", "", "signing secret (default $ADMIN_JWT_SECRET)")
	return cmd
}

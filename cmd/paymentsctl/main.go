// Command paymentsctl is the operator tool for the payments service: it signs and
// replays gateway webhooks, migrates the schema and mints admin tokens.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "paymentsctl",
		Short:         "Operator tool for the enrollment payments service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(signCmd(v))
	rootCmd.AddCommand(sendCmd(v))
	rootCmd.AddCommand(migrateCmd(v))
	rootCmd.AddCommand(tokenCmd(v))
	return rootCmd
}

// bindEnv lets a flag fall back to an environment variable. Bound at run time because
// several subcommands share one key.
func bindEnv(v *viper.Viper, cmd *cobra.Command, flag, env string) {
	_ = v.BindPFlag(env, cmd.Flags().Lookup(flag))
}

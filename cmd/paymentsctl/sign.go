package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

func signCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Print the webhook signature for a body (file or stdin)",
		Long: `Computes hex(HMAC-SHA256(webhook secret, raw body)), the value the gateway
sends in X-Razorpay-Signature. The body is read byte for byte; no trailing
newline is stripped.

Examples:
  paymentsctl sign event.json
  echo -n '{"event":"payment.captured"}' | paymentsctl sign`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd, "secret", "RAZORPAY_WEBHOOK_SECRET")
			secret := v.GetString("RAZORPAY_WEBHOOK_SECRET")
			if secret == "" {
				return errors.New("webhook secret not provided and RAZORPAY_WEBHOOK_SECRET not set")
			}

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			body, err := io.ReadAll(r)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), payments.Sign(secret, body))
			return nil
		},
	}

	cmd.Flags().String("secret", "", "webhook secret (default $RAZORPAY_WEBHOOK_SECRET)")
	return cmd
}

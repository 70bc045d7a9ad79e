package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

func sendCmd(v *viper.Viper) *cobra.Command {
	var (
		o       eventOpts
		url     string
		eventID string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Post a signed mock webhook to a running service",
		Long: `Builds a gateway-shaped event, signs it with the webhook secret and posts it.

Examples:
  paymentsctl send --type payment.captured --enrollment 42 --amount 299900
  paymentsctl send --type refund.created --payment-id pay_abc --amount 299900
  paymentsctl send --type payment.failed --enrollment 42 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd, "secret", "RAZORPAY_WEBHOOK_SECRET")
			secret := v.GetString("RAZORPAY_WEBHOOK_SECRET")
			if secret == "" {
				return errors.New("webhook secret not provided and RAZORPAY_WEBHOOK_SECRET not set")
			}
			if o.PaymentID == "" {
				o.PaymentID = "pay_" + randomHex(7)
			}
			if o.RefundID == "" {
				o.RefundID = "rfnd_" + randomHex(7)
			}

			body, err := buildEvent(o)
			if err != nil {
				return err
			}
			sig := payments.Sign(secret, body)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", payments.HeaderSignature, sig)
			fmt.Fprintf(out, "Body: %s\n", body)
			if dryRun {
				fmt.Fprintln(out, "\n[DRY RUN] Not sending request")
				return nil
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(payments.HeaderSignature, sig)
			if eventID != "" {
				req.Header.Set(payments.HeaderEventID, eventID)
			}

			client := &http.Client{Timeout: 15 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("send webhook: %w", err)
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(out, "Status: %d\nResponse: %s\n", resp.StatusCode, respBody)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("webhook rejected with status %d", resp.StatusCode)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", "http://localhost:8080/api/payments/webhook", "webhook URL")
	f.StringVar(&eventID, "event-id", "", "X-Razorpay-Event-Id header (empty: server derives one from the body)")
	f.StringVar(&o.Type, "type", payments.EventPaymentCaptured, "event type (payment.captured, payment.failed, refund.created)")
	f.UintVar(&o.EnrollmentID, "enrollment", 0, "enrollment id placed in payment notes")
	f.StringVar(&o.PaymentID, "payment-id", "", "payment id (random when empty)")
	f.StringVar(&o.OrderID, "order-id", "", "gateway order id")
	f.StringVar(&o.RefundID, "refund-id", "", "refund id (random when empty)")
	f.Int64Var(&o.Amount, "amount", 0, "amount in minor units")
	f.StringVar(&o.Currency, "currency", "INR", "currency")
	f.StringVar(&o.Method, "method", "upi", "payment method")
	f.BoolVar(&dryRun, "dry-run", false, "print signature and body without sending")
	f.String("secret", "", "webhook secret (default $RAZORPAY_WEBHOOK_SECRET)")
	return cmd
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

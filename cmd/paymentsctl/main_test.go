package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildEvent_ParsesAsGatewayEvent(t *testing.T) {
	body, err := buildEvent(eventOpts{
		Type: payments.EventPaymentCaptured, EnrollmentID: 42, PaymentID: "pay_1",
		OrderID: "order_1", Amount: 299900, Currency: "INR", Method: "upi",
	})
	require.NoError(t, err)

	gw := payments.NewRazorpayWithOrders(payments.RazorpayConfig{WebhookSecret: "wh"}, nil)
	h := http.Header{}
	h.Set(payments.HeaderSignature, payments.Sign("wh", body))
	ev, err := gw.VerifyWebhook(h, body)
	require.NoError(t, err)
	require.NotNil(t, ev.Payment)
	assert.Equal(t, "42", ev.Payment.Notes["enrollmentId"])
	assert.Equal(t, int64(299900), ev.Payment.Amount)

	_, err = buildEvent(eventOpts{Type: "order.paid"})
	assert.Error(t, err)
}

func TestSignCmd(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "wh_secret")

	out, err := execute(t, `{"event":"payment.captured"}`, "sign")
	require.NoError(t, err)
	assert.Equal(t, payments.Sign("wh_secret", []byte(`{"event":"payment.captured"}`))+"\n", out)

	out, err = execute(t, "x", "sign", "--secret", "other")
	require.NoError(t, err)
	assert.Equal(t, payments.Sign("other", []byte("x"))+"\n", out)
}

func TestSendCmd(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "wh_secret")

	var gotSig, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(payments.HeaderSignature)
		gotEvent = r.Header.Get(payments.HeaderEventID)
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	_, err := execute(t, "", "send", "--url", srv.URL, "--type", "refund.created",
		"--payment-id", "pay_9", "--amount", "5000", "--event-id", "evt_cli")
	require.NoError(t, err)
	assert.Equal(t, "evt_cli", gotEvent)
	assert.True(t, payments.ValidSignature("wh_secret", gotBody, gotSig))
	assert.Contains(t, string(gotBody), `"payment_id":"pay_9"`)
}

func TestMigrateCmd(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "ctl.db")
	out, err := execute(t, "", "migrate", "--driver", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "migrated 4 tables on sqlite")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "jwt-secret")

	out, err := execute(t, "", "token", "--subject", "ops@example.com")
	require.NoError(t, err)

	claims, err := auth.NewTokens("jwt-secret", 0).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.UserID)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

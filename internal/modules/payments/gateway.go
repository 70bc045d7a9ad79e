package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	HeaderSignature = "X-Razorpay-Signature"
	HeaderEventID   = "X-Razorpay-Event-Id"
)

// Event types consumed by the webhook path.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundCreated   = "refund.created"
)

type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type CreateOrderResponse struct {
	OrderID string
	Status  string
}

// Gateway is the payment provider boundary. It is constructed once in main and injected.
type Gateway interface {
	Name() string
	KeyID() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)

	// Client-reported checkout completion.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// Webhook: verify signature over the raw body, then parse.
	VerifyWebhook(header http.Header, body []byte) (WebhookEvent, error)
}

type WebhookEvent struct {
	EventID string
	Type    string
	Payment *PaymentEntity
	Refund  *RefundEntity
}

type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
	Notes    Notes  `json:"notes"`
}

type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity RefundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

func parseEvent(eventID string, body []byte) (WebhookEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}

	ev := WebhookEvent{EventID: eventID, Type: env.Event}
	if env.Payload.Payment != nil {
		p := env.Payload.Payment.Entity
		ev.Payment = &p
	}
	if env.Payload.Refund != nil {
		r := env.Payload.Refund.Entity
		ev.Refund = &r
	}
	return ev, nil
}

// Notes is the gateway's free-form key/value map. The gateway sends an empty
// array instead of an object when no notes are set, and values may be numbers.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("[]")) {
		*n = Notes{}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	*n = out
	return nil
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderAPI is the slice of the Razorpay SDK used for order creation.
type OrderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

type Razorpay struct {
	cfg    RazorpayConfig
	orders OrderAPI
}

// NewRazorpay builds the gateway over the official SDK client.
func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return NewRazorpayWithOrders(cfg, client.Order)
}

func NewRazorpayWithOrders(cfg RazorpayConfig, orders OrderAPI) *Razorpay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Razorpay{cfg: cfg, orders: orders}
}

func (r *Razorpay) Name() string  { return "razorpay" }
func (r *Razorpay) KeyID() string { return r.cfg.KeyID }

func (r *Razorpay) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	// The SDK takes no context; bound the wait instead.
	ch := make(chan result, 1)
	go func() {
		body, err := r.orders.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return CreateOrderResponse{}, fmt.Errorf("razorpay create order: %w", ctx.Err())
	case res = <-ch:
	}
	if res.err != nil {
		return CreateOrderResponse{}, fmt.Errorf("razorpay create order: %w", res.err)
	}

	id, _ := res.body["id"].(string)
	if id == "" {
		return CreateOrderResponse{}, errors.New("razorpay create order: response has no order id")
	}
	status, _ := res.body["status"].(string)
	return CreateOrderResponse{OrderID: id, Status: status}, nil
}

func (r *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return ValidSignature(r.cfg.KeySecret, CheckoutPayload(orderID, paymentID), signature)
}

func (r *Razorpay) VerifyWebhook(header http.Header, body []byte) (WebhookEvent, error) {
	sig := header.Get(HeaderSignature)
	if sig == "" {
		return WebhookEvent{}, ErrMissingSignature
	}
	if !ValidSignature(r.cfg.WebhookSecret, body, sig) {
		return WebhookEvent{}, ErrBadSignature
	}

	eventID := strings.TrimSpace(header.Get(HeaderEventID))
	if eventID == "" {
		eventID = "sha256:" + bodyDigest(body)
	}
	return parseEvent(eventID, body)
}

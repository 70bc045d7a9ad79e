package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

type eventOpts struct {
	Type         string
	EnrollmentID uint
	PaymentID    string
	OrderID      string
	RefundID     string
	Amount       int64 // minor units
	Currency     string
	Method       string
}

// buildEvent renders a gateway-shaped webhook envelope.
func buildEvent(o eventOpts) ([]byte, error) {
	switch o.Type {
	case payments.EventPaymentCaptured, payments.EventPaymentFailed:
		entity := map[string]any{
			"id":       o.PaymentID,
			"order_id": o.OrderID,
			"amount":   o.Amount,
			"currency": o.Currency,
			"method":   o.Method,
			"notes":    map[string]string{"enrollmentId": strconv.FormatUint(uint64(o.EnrollmentID), 10)},
		}
		return json.Marshal(map[string]any{
			"event":   o.Type,
			"payload": map[string]any{"payment": map[string]any{"entity": entity}},
		})
	case payments.EventRefundCreated:
		entity := map[string]any{
			"id":         o.RefundID,
			"payment_id": o.PaymentID,
			"amount":     o.Amount,
		}
		return json.Marshal(map[string]any{
			"event":   o.Type,
			"payload": map[string]any{"refund": map[string]any{"entity": entity}},
		})
	default:
		return nil, fmt.Errorf("unsupported event type %q", o.Type)
	}
}

package view

import (
	"time"

	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

type LedgerPayment struct {
	ID                uint           `json:"id"`
	EnrollmentID      uint           `json:"enrollmentId"`
	ExternalPaymentID string         `json:"razorpayPaymentId"`
	ExternalOrderID   string         `json:"razorpayOrderId"`
	Amount            string         `json:"amount"`
	Currency          string         `json:"currency"`
	Status            string         `json:"status"`
	Method            string         `json:"method"`
	Source            string         `json:"source"`
	RefundID          *string        `json:"refundId,omitempty"`
	RefundAmount      *string        `json:"refundAmount,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`

	Enrollment LedgerEnrollment `json:"enrollment"`
}

type LedgerEnrollment struct {
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Course LedgerCourse `json:"course"`
}

type LedgerCourse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type LedgerStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Sum    string `json:"sum"`
}

type Ledger struct {
	Payments     []LedgerPayment `json:"payments"`
	Stats        []LedgerStat    `json:"stats"`
	TotalRevenue string          `json:"totalRevenue"`
}

func LedgerFrom(res payments.LedgerResult) Ledger {
	out := Ledger{
		Payments:     make([]LedgerPayment, 0, len(res.Items)),
		Stats:        make([]LedgerStat, 0, len(res.Stats)),
		TotalRevenue: res.TotalRevenue.StringFixed(2),
	}
	for _, it := range res.Items {
		p := it.Payment
		lp := LedgerPayment{
			ID:                p.ID,
			EnrollmentID:      p.EnrollmentID,
			ExternalPaymentID: p.ExternalPaymentID,
			ExternalOrderID:   p.ExternalOrderID,
			Amount:            p.Amount.StringFixed(2),
			Currency:          p.Currency,
			Status:            string(p.Status),
			Method:            p.Method,
			Source:            string(p.Source),
			RefundID:          p.RefundID,
			Metadata:          p.Metadata,
			CreatedAt:         p.CreatedAt,
			Enrollment: LedgerEnrollment{
				Name:  it.Enrollment.Name,
				Email: it.Enrollment.Email,
				Course: LedgerCourse{
					ID:    it.Course.ID,
					Title: it.Course.Title,
					Price: it.Course.Price.StringFixed(2),
				},
			},
		}
		if p.RefundAmount.Valid {
			s := p.RefundAmount.Decimal.StringFixed(2)
			lp.RefundAmount = &s
		}
		out.Payments = append(out.Payments, lp)
	}
	for _, s := range res.Stats {
		out.Stats = append(out.Stats, LedgerStat{Status: string(s.Status), Count: s.Count, Sum: s.Sum.StringFixed(2)})
	}
	return out
}

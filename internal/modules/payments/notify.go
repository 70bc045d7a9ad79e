package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
)

// Settlement describes a committed enrollment payment transition.
type Settlement struct {
	EnrollmentID      uint                      `json:"enrollmentId"`
	CourseID          uint                      `json:"courseId"`
	CourseTitle       string                    `json:"courseTitle"`
	StudentName       string                    `json:"studentName"`
	StudentEmail      string                    `json:"studentEmail"`
	Status            enrollments.PaymentStatus `json:"status"`
	Source            enrollments.Source        `json:"source"`
	Amount            decimal.Decimal           `json:"amount"`
	Currency          string                    `json:"currency"`
	ExternalPaymentID string                    `json:"externalPaymentId,omitempty"`
	OccurredAt        time.Time                 `json:"occurredAt"`
}

type Notifier interface {
	NotifySettlement(ctx context.Context, s Settlement) error
}

// Notifiers fans a settlement out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) NotifySettlement(ctx context.Context, s Settlement) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.NotifySettlement(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const notifyTimeout = 15 * time.Second

// dispatch is fire-and-forget: the request never waits on notifications.
func dispatch(logger *slog.Logger, n Notifier, s Settlement) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.NotifySettlement(ctx, s); err != nil {
			logger.Warn("settlement notification failed",
				"enrollment_id", s.EnrollmentID, "status", s.Status, "err", err)
		}
	}()
}

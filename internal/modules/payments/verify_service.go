package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

type VerifyService struct {
	db       *gorm.DB
	gateway  Gateway
	currency string
	notifier Notifier
	logger   *slog.Logger
}

func NewVerifyService(db *gorm.DB, gw Gateway, currency string, n Notifier, logger *slog.Logger) *VerifyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyService{db: db, gateway: gw, currency: currency, notifier: n, logger: logger}
}

type VerifyInput struct {
	OrderID      string
	PaymentID    string
	Signature    string
	EnrollmentID uint
}

type VerifyResult struct {
	EnrollmentID  uint
	PaymentStatus enrollments.PaymentStatus
	Idempotent    bool
}

// Verify records a client-reported checkout completion once its signature checks out.
// Webhook-sourced state always wins over this path.
func (s *VerifyService) Verify(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" || in.EnrollmentID == 0 {
		return VerifyResult{}, apperr.InvalidErr("Missing required fields", nil)
	}

	if !s.gateway.VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature) {
		signatureFailuresTotal.WithLabelValues("verify").Inc()
		s.logger.WarnContext(ctx, "payment_signature_rejected",
			"security", true, "path", "verify", "enrollment_id", in.EnrollmentID, "order_id", in.OrderID)
		return VerifyResult{}, apperr.SignatureErr("Invalid payment signature")
	}

	var (
		res      VerifyResult
		notify   *Settlement
		conflict enrollments.PaymentStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		en, err := enrollments.GetForUpdate(ctx, tx, in.EnrollmentID)
		if err != nil {
			if errors.Is(err, enrollments.ErrEnrollmentNotFound) {
				return apperr.NotFoundErr("Enrollment not found")
			}
			return err
		}
		if en.OrderRef != nil && *en.OrderRef != in.OrderID {
			return apperr.InvalidErr("Order does not belong to this enrollment", nil)
		}
		res.EnrollmentID = en.ID
		res.PaymentStatus = en.PaymentStatus

		switch {
		case en.PaymentStatus == enrollments.StatusCompleted:
			res.Idempotent = true
			return nil
		case en.PaymentStatus == enrollments.StatusRefunded, en.FailedFor(in.PaymentID):
			// a webhook failure only settles the payment it names
			conflict = en.PaymentStatus
			return nil
		}

		course, err := courses.NewRepo(tx).Get(ctx, en.CourseID)
		if err != nil {
			return err
		}
		if err := s.recordPayment(ctx, tx, en, course, in); err != nil {
			return err
		}
		if err := enrollments.SetStatus(ctx, tx, en.ID, enrollments.StatusCompleted, enrollments.SourceClient); err != nil {
			return err
		}

		res.PaymentStatus = enrollments.StatusCompleted
		notify = &Settlement{
			EnrollmentID:      en.ID,
			CourseID:          course.ID,
			CourseTitle:       course.Title,
			StudentName:       en.Name,
			StudentEmail:      en.Email,
			Status:            enrollments.StatusCompleted,
			Source:            enrollments.SourceClient,
			Amount:            course.Price,
			Currency:          s.currency,
			ExternalPaymentID: in.PaymentID,
			OccurredAt:        time.Now(),
		}
		return nil
	})
	if err != nil {
		return VerifyResult{}, apperr.Wrap(fmt.Errorf("verify payment: %w", err))
	}
	if conflict != "" {
		return res, apperr.ConflictErr(fmt.Sprintf("Payment already settled by the gateway as %s", conflict))
	}

	if notify != nil {
		transitionsTotal.WithLabelValues(string(notify.Status), string(notify.Source)).Inc()
		dispatch(s.logger, s.notifier, *notify)
		s.logger.InfoContext(ctx, "payment verified", "enrollment_id", res.EnrollmentID, "payment_id", in.PaymentID)
	}
	return res, nil
}

// recordPayment writes the client-confirmed payment, replacing a row left by a failed attempt.
// unique(enrollment_id) and unique(external_payment_id) keep replays from inserting twice.
func (s *VerifyService) recordPayment(ctx context.Context, tx *gorm.DB, en enrollments.Enrollment, course courses.Course, in VerifyInput) error {
	var existing Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ? OR external_payment_id = ?", en.ID, in.PaymentID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := Payment{
			EnrollmentID:      en.ID,
			ExternalPaymentID: in.PaymentID,
			ExternalOrderID:   in.OrderID,
			Amount:            course.Price,
			Currency:          s.currency,
			Status:            enrollments.StatusCompleted,
			Method:            "razorpay",
			Metadata:          checkoutMetadata(in),
			Source:            enrollments.SourceClient,
		}
		return tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error
	case err != nil:
		return err
	}

	if existing.EnrollmentID != en.ID {
		return apperr.ConflictErr("Payment is recorded against another enrollment")
	}
	if existing.ExternalPaymentID == in.PaymentID {
		if existing.Status != enrollments.StatusCompleted {
			return apperr.ConflictErr(fmt.Sprintf("Payment already settled by the gateway as %s", existing.Status))
		}
		return nil
	}
	if existing.Status != enrollments.StatusFailed {
		return apperr.ConflictErr("A different payment is already recorded for this enrollment")
	}
	return tx.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"external_payment_id": in.PaymentID,
			"external_order_id":   in.OrderID,
			"amount":              course.Price,
			"currency":            s.currency,
			"status":              enrollments.StatusCompleted,
			"method":              "razorpay",
			"metadata":            checkoutMetadata(in),
			"source":              enrollments.SourceClient,
			"refund_id":           nil,
			"refund_amount":       nil,
		}).Error
}

func checkoutMetadata(in VerifyInput) datatypes.JSONMap {
	return datatypes.JSONMap{"orderId": in.OrderID, "paymentId": in.PaymentID}
}

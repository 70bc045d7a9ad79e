package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/shared/money"
	"github.com/prashanttechie/portfolio-project/internal/storage"
)

// Outcomes of applying a verified event.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
)

type WebhookService struct {
	db       *gorm.DB
	notifier Notifier
	archive  storage.Storage
	logger   *slog.Logger
}

func NewWebhookService(db *gorm.DB, n Notifier, archive storage.Storage, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{db: db, notifier: n, archive: archive, logger: logger}
}

// Handle applies one verified event. It returns an error only for failures worth a
// gateway retry; logical no-ops are acknowledged with a nil error.
func (s *WebhookService) Handle(ctx context.Context, provider string, ev WebhookEvent, rawBody []byte) (string, error) {
	archived := s.archiveBody(ctx, ev, rawBody)

	outcome := OutcomeApplied
	var settled []Settlement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settled = settled[:0]
		now := time.Now()

		payload := datatypes.JSON(rawBody)
		if !json.Valid(rawBody) {
			payload = datatypes.JSON(`null`)
		}
		pe := ProviderEvent{
			ID:              uuid.NewString(),
			Provider:        provider,
			EventID:         ev.EventID,
			EventType:       ev.Type,
			PayloadJSON:     payload,
			ArchiveLocation: archived,
			ReceivedAt:      now,
		}

		// dedupe: unique(provider,event_id)
		if err := tx.WithContext(ctx).Create(&pe).Error; err != nil {
			if isDup(err) {
				outcome = OutcomeDuplicate
				s.logger.InfoContext(ctx, "webhook event deduplicated", "provider", provider, "event_id", ev.EventID, "type", ev.Type)
				return nil
			}
			return err
		}

		var (
			st      *Settlement
			err     error
			applied bool
		)
		switch ev.Type {
		case EventPaymentCaptured:
			st, applied, err = s.applyCaptured(ctx, tx, ev)
		case EventPaymentFailed:
			st, applied, err = s.applyFailed(ctx, tx, ev)
		case EventRefundCreated:
			st, applied, err = s.applyRefund(ctx, tx, ev)
		default:
			s.logger.InfoContext(ctx, "unhandled webhook event type", "event_id", ev.EventID, "type", ev.Type)
		}
		if err != nil {
			return err
		}
		if !applied {
			outcome = OutcomeIgnored
		}
		if st != nil {
			settled = append(settled, *st)
		}

		processed := now
		return tx.WithContext(ctx).Model(&ProviderEvent{}).
			Where("id = ?", pe.ID).
			Update("processed_at", &processed).Error
	})
	if err != nil {
		webhookEventsTotal.WithLabelValues(ev.Type, "error").Inc()
		s.logger.ErrorContext(ctx, "webhook event apply failed", "provider", provider, "event_id", ev.EventID, "type", ev.Type, "err", err)
		return "", err
	}

	webhookEventsTotal.WithLabelValues(ev.Type, outcome).Inc()
	for _, st := range settled {
		transitionsTotal.WithLabelValues(string(st.Status), string(st.Source)).Inc()
		dispatch(s.logger, s.notifier, st)
	}
	s.logger.InfoContext(ctx, "webhook event processed", "provider", provider, "event_id", ev.EventID, "type", ev.Type, "outcome", outcome)
	return outcome, nil
}

func (s *WebhookService) applyCaptured(ctx context.Context, tx *gorm.DB, ev WebhookEvent) (*Settlement, bool, error) {
	if ev.Payment == nil || ev.Payment.ID == "" {
		s.logger.WarnContext(ctx, "captured event without payment entity", "event_id", ev.EventID)
		return nil, false, nil
	}
	pay := ev.Payment

	en, ok, err := s.enrollmentFromNotes(ctx, tx, ev)
	if err != nil || !ok {
		return nil, false, err
	}
	if en.PaymentStatus == enrollments.StatusRefunded {
		s.logger.InfoContext(ctx, "captured event for refunded enrollment ignored", "enrollment_id", en.ID, "payment_id", pay.ID)
		return nil, false, nil
	}

	amount := money.ToMajor(pay.Amount)
	currency := strings.ToUpper(pay.Currency)

	var existing Payment
	err = tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ? OR external_payment_id = ?", en.ID, pay.ID).
		First(&existing).Error
	switch {
	case err == nil:
		// a failed attempt may be superseded by a later capture on the same enrollment
		retried := existing.EnrollmentID == en.ID && existing.ExternalPaymentID != pay.ID &&
			existing.Status == enrollments.StatusFailed
		if !retried && (existing.ExternalPaymentID != pay.ID || existing.EnrollmentID != en.ID) {
			s.logger.WarnContext(ctx, "captured payment conflicts with recorded payment",
				"enrollment_id", en.ID, "payment_id", pay.ID, "recorded_payment_id", existing.ExternalPaymentID)
			return nil, false, nil
		}
		if existing.Status == enrollments.StatusRefunded {
			return nil, false, nil
		}
		// webhook values replace what the client path recorded
		if err := tx.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"status":              enrollments.StatusCompleted,
				"external_payment_id": pay.ID,
				"external_order_id":   pay.OrderID,
				"amount":              amount,
				"currency":            currency,
				"method":              pay.Method,
				"metadata":            notesMap(pay.Notes),
				"source":              enrollments.SourceWebhook,
			}).Error; err != nil {
			return nil, false, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		p := Payment{
			EnrollmentID:      en.ID,
			ExternalPaymentID: pay.ID,
			ExternalOrderID:   pay.OrderID,
			Amount:            amount,
			Currency:          currency,
			Status:            enrollments.StatusCompleted,
			Method:            pay.Method,
			Metadata:          notesMap(pay.Notes),
			Source:            enrollments.SourceWebhook,
		}
		if err := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
			return nil, false, err
		}
	default:
		return nil, false, err
	}

	if err := enrollments.SetStatus(ctx, tx, en.ID, enrollments.StatusCompleted, enrollments.SourceWebhook); err != nil {
		return nil, false, err
	}

	st, err := s.settlement(ctx, tx, en, enrollments.StatusCompleted, amount, currency, pay.ID)
	if err != nil {
		return nil, false, err
	}
	// a client-confirmed enrollment was already announced
	if en.PaymentStatus == enrollments.StatusCompleted {
		return nil, true, nil
	}
	return st, true, nil
}

func (s *WebhookService) applyFailed(ctx context.Context, tx *gorm.DB, ev WebhookEvent) (*Settlement, bool, error) {
	en, ok, err := s.enrollmentFromNotes(ctx, tx, ev)
	if err != nil || !ok {
		return nil, false, err
	}

	switch {
	case en.PaymentStatus == enrollments.StatusRefunded:
		return nil, false, nil
	case en.PaymentStatus == enrollments.StatusCompleted && en.StatusSource == enrollments.SourceWebhook:
		// late failure of another attempt; the captured payment stands
		s.logger.InfoContext(ctx, "failed event after webhook capture ignored", "enrollment_id", en.ID)
		return nil, false, nil
	case en.PaymentStatus == enrollments.StatusFailed:
		return nil, false, nil
	}

	failedID := ""
	if ev.Payment != nil {
		failedID = ev.Payment.ID
	}

	var recorded Payment
	err = tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ?", en.ID).
		First(&recorded).Error
	switch {
	case err == nil:
		// only the attempt that was recorded can be corrected; a retry may have succeeded
		if recorded.ExternalPaymentID != failedID {
			s.logger.InfoContext(ctx, "failed event for another payment attempt ignored",
				"enrollment_id", en.ID, "payment_id", failedID, "recorded_payment_id", recorded.ExternalPaymentID)
			return nil, false, nil
		}
		if err := tx.WithContext(ctx).Model(&Payment{}).
			Where("id = ?", recorded.ID).
			Updates(map[string]any{
				"status": enrollments.StatusFailed,
				"source": enrollments.SourceWebhook,
			}).Error; err != nil {
			return nil, false, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, false, err
	}

	if err := enrollments.MarkFailed(ctx, tx, en.ID, failedID); err != nil {
		return nil, false, err
	}

	amount := decimal.Zero
	currency := ""
	if ev.Payment != nil {
		amount = money.ToMajor(ev.Payment.Amount)
		currency = strings.ToUpper(ev.Payment.Currency)
	}
	st, err := s.settlement(ctx, tx, en, enrollments.StatusFailed, amount, currency, failedID)
	return st, true, err
}

func (s *WebhookService) applyRefund(ctx context.Context, tx *gorm.DB, ev WebhookEvent) (*Settlement, bool, error) {
	if ev.Refund == nil || ev.Refund.PaymentID == "" {
		s.logger.WarnContext(ctx, "refund event without refund entity", "event_id", ev.EventID)
		return nil, false, nil
	}
	ref := ev.Refund

	var p Payment
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "external_payment_id = ?", ref.PaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.InfoContext(ctx, "refund for unknown payment ignored", "payment_id", ref.PaymentID, "refund_id", ref.ID)
			return nil, false, nil
		}
		return nil, false, err
	}
	if p.Status == enrollments.StatusRefunded {
		return nil, false, nil
	}

	refundAmount := money.ToMajor(ref.Amount)
	refundID := ref.ID
	if err := tx.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":        enrollments.StatusRefunded,
			"refund_id":     &refundID,
			"refund_amount": refundAmount,
			"source":        enrollments.SourceWebhook,
		}).Error; err != nil {
		return nil, false, err
	}
	if err := enrollments.SetStatus(ctx, tx, p.EnrollmentID, enrollments.StatusRefunded, enrollments.SourceWebhook); err != nil {
		return nil, false, err
	}

	en, err := enrollments.GetForUpdate(ctx, tx, p.EnrollmentID)
	if err != nil {
		return nil, false, err
	}
	st, err := s.settlement(ctx, tx, en, enrollments.StatusRefunded, refundAmount, p.Currency, p.ExternalPaymentID)
	return st, true, err
}

// enrollmentFromNotes resolves and locks the enrollment named in the payment notes.
// A missing or unknown id cannot be fixed by a retry, so it is reported as not found.
func (s *WebhookService) enrollmentFromNotes(ctx context.Context, tx *gorm.DB, ev WebhookEvent) (enrollments.Enrollment, bool, error) {
	if ev.Payment == nil {
		s.logger.WarnContext(ctx, "payment event without payment entity", "event_id", ev.EventID, "type", ev.Type)
		return enrollments.Enrollment{}, false, nil
	}
	raw := ev.Payment.Notes["enrollmentId"]
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		s.logger.WarnContext(ctx, "payment event without usable enrollmentId", "event_id", ev.EventID, "payment_id", ev.Payment.ID, "enrollment_id", raw)
		return enrollments.Enrollment{}, false, nil
	}

	en, err := enrollments.GetForUpdate(ctx, tx, uint(id))
	if err != nil {
		if errors.Is(err, enrollments.ErrEnrollmentNotFound) {
			s.logger.WarnContext(ctx, "payment event for unknown enrollment", "event_id", ev.EventID, "enrollment_id", id)
			return enrollments.Enrollment{}, false, nil
		}
		return enrollments.Enrollment{}, false, err
	}
	return en, true, nil
}

func (s *WebhookService) settlement(ctx context.Context, tx *gorm.DB, en enrollments.Enrollment, st enrollments.PaymentStatus, amount decimal.Decimal, currency, paymentID string) (*Settlement, error) {
	course, err := courses.NewRepo(tx).Get(ctx, en.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load course %d: %w", en.CourseID, err)
	}
	return &Settlement{
		EnrollmentID:      en.ID,
		CourseID:          course.ID,
		CourseTitle:       course.Title,
		StudentName:       en.Name,
		StudentEmail:      en.Email,
		Status:            st,
		Source:            enrollments.SourceWebhook,
		Amount:            amount,
		Currency:          currency,
		ExternalPaymentID: paymentID,
		OccurredAt:        time.Now(),
	}, nil
}

// archiveBody stores the raw body and returns where it went; nil when archiving is off or failed.
func (s *WebhookService) archiveBody(ctx context.Context, ev WebhookEvent, body []byte) *string {
	if s.archive == nil {
		return nil
	}
	key := ArchiveKey(time.Now().UTC(), ev.EventID)
	res, err := s.archive.Put(ctx, bytes.NewReader(body), storage.PutInput{
		Key:         key,
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "webhook archive failed", "event_id", ev.EventID, "key", key, "err", err)
		return nil
	}
	s.logger.DebugContext(ctx, "webhook body archived", "event_id", ev.EventID, "location", res.Location)
	return &res.Location
}

// ArchiveKey is webhooks/<yyyy>/<mm>/<dd>/<event-id>.json.
func ArchiveKey(t time.Time, eventID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(eventID)
	return fmt.Sprintf("webhooks/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), safe)
}

func isDup(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

package enrollments

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id uint) (Enrollment, error) {
	return get(ctx, r.db, id, false)
}

// GetForUpdate locks the row inside tx.
func GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (Enrollment, error) {
	return get(ctx, tx, id, true)
}

func get(ctx context.Context, db *gorm.DB, id uint, lock bool) (Enrollment, error) {
	q := db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var e Enrollment
	if err := q.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Enrollment{}, ErrEnrollmentNotFound
		}
		return Enrollment{}, err
	}
	return e, nil
}

// SetStatus writes status and its origin in one statement.
func SetStatus(ctx context.Context, tx *gorm.DB, id uint, st PaymentStatus, src Source) error {
	return tx.WithContext(ctx).Model(&Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": st,
			"status_source":  src,
		}).Error
}

// MarkFailed sets a webhook-sourced FAILED status and remembers which payment failed.
func MarkFailed(ctx context.Context, tx *gorm.DB, id uint, paymentID string) error {
	updates := map[string]any{
		"payment_status": StatusFailed,
		"status_source":  SourceWebhook,
	}
	if paymentID != "" {
		updates["failed_payment_id"] = paymentID
	}
	return tx.WithContext(ctx).Model(&Enrollment{}).Where("id = ?", id).Updates(updates).Error
}

// FailedFor reports whether the recorded failure belongs to paymentID. A failure with no
// recorded payment id is treated as covering every payment.
func (e Enrollment) FailedFor(paymentID string) bool {
	if e.PaymentStatus != StatusFailed {
		return false
	}
	return e.FailedPaymentID == nil || *e.FailedPaymentID == paymentID
}

func (r *Repo) ListByIDs(ctx context.Context, ids []uint) (map[uint]Enrollment, error) {
	out := make(map[uint]Enrollment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Enrollment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, e := range rows {
		out[e.ID] = e
	}
	return out, nil
}

package enrollments

import "time"

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusCompleted PaymentStatus = "COMPLETED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusRefunded  PaymentStatus = "REFUNDED"
)

// Source records which path wrote the current payment status.
type Source string

const (
	SourceNone    Source = ""
	SourceClient  Source = "client"
	SourceWebhook Source = "webhook"
)

type Enrollment struct {
	ID              uint          `gorm:"primaryKey"`
	CourseID        uint          `gorm:"not null;index:ix_enrollments_course_id"`
	Name            string        `gorm:"type:varchar(255);not null"`
	Email           string        `gorm:"type:varchar(255);not null;index:ix_enrollments_email"`
	Phone           *string       `gorm:"type:varchar(32)"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(16);not null;index:ix_enrollments_payment_status"`
	StatusSource    Source        `gorm:"type:varchar(16);not null;default:''"`
	OrderRef        *string       `gorm:"type:varchar(64);uniqueIndex:ux_enrollments_order_ref"`
	FailedPaymentID *string       `gorm:"type:varchar(64)"` // payment named by the webhook that set FAILED
	CreatedAt       time.Time     `gorm:"not null"`
	UpdatedAt       time.Time     `gorm:"not null"`
}

func (Enrollment) TableName() string { return "enrollments" }

// State maps the payment status onto what the enrollment UI shows.
func (s PaymentStatus) State() string {
	switch s {
	case StatusCompleted:
		return "confirmed"
	case StatusFailed:
		return "failed"
	case StatusRefunded:
		return "refunded"
	default:
		return "processing"
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

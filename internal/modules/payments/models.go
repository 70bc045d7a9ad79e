package payments

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
)

// One row per enrollment; a refund mutates the same row.
type Payment struct {
	ID                uint                      `gorm:"primaryKey"`
	EnrollmentID      uint                      `gorm:"not null;uniqueIndex:ux_payments_enrollment_id"`
	ExternalPaymentID string                    `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_external_payment_id"`
	ExternalOrderID   string                    `gorm:"type:varchar(64);not null;index:ix_payments_external_order_id"`
	Amount            decimal.Decimal           `gorm:"type:decimal(10,2);not null"` // major units
	Currency          string                    `gorm:"type:char(3);not null"`
	Status            enrollments.PaymentStatus `gorm:"type:varchar(16);not null;index:ix_payments_status"`
	Method            string                    `gorm:"type:varchar(32);not null"`
	Metadata          datatypes.JSONMap         `gorm:"type:json"`
	RefundID          *string                   `gorm:"type:varchar(64)"`
	RefundAmount      decimal.NullDecimal       `gorm:"type:decimal(10,2)"`
	Source            enrollments.Source        `gorm:"type:varchar(16);not null"`
	CreatedAt         time.Time                 `gorm:"not null"`
	UpdatedAt         time.Time                 `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

type ProviderEvent struct {
	ID              string         `gorm:"type:char(36);primaryKey"`
	Provider        string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID         string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType       string         `gorm:"type:varchar(64);not null"`
	PayloadJSON     datatypes.JSON `gorm:"type:json;not null"`
	ArchiveLocation *string        `gorm:"type:varchar(512)"`

	ReceivedAt  time.Time `gorm:"not null"`
	ProcessedAt *time.Time
}

func (ProviderEvent) TableName() string { return "provider_events" }

func notesMap(n Notes) datatypes.JSONMap {
	m := make(datatypes.JSONMap, len(n))
	for k, v := range n {
		m[k] = v
	}
	return m
}

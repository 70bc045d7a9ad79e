package courses

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"` // major units
	Duration    string          `gorm:"type:varchar(64);not null"`
	Level       string          `gorm:"type:varchar(32);not null"`
	Category    string          `gorm:"type:varchar(64);not null;index:ix_courses_category"`
	Image       *string         `gorm:"type:varchar(512)"`
	Featured    bool            `gorm:"not null;default:false"`
	Published   bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (Course) TableName() string { return "courses" }

package period

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayPeriod is one payment window of a subsidiary. Year, Month and
// Number are derived from the end date: Number counts the periods
// that close inside the same calendar month, in end-date order.
type PayPeriod struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SubsidiaryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Year            int       `gorm:"not null"`
	Month           int       `gorm:"not null"`
	Number          int       `gorm:"not null"`
	StartDate       time.Time `gorm:"type:date;not null"`
	EndDate         time.Time `gorm:"type:date;not null"`
	DeclarationDate time.Time `gorm:"type:date;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (PayPeriod) TableName() string {
	return "pay_periods"
}

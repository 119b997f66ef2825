package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const EventTypeHoliday = "HOLIDAY"

// DefaultNonWorkingWeekday is applied to dates without a stored record.
const DefaultNonWorkingWeekday = time.Sunday

type CalendarDay struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_calendar_company_date,unique"`
	Date      time.Time `gorm:"type:date;not null;index:idx_calendar_company_date,unique"`
	Working   bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Events []CalendarEvent `gorm:"foreignKey:DayID"`
}

func (CalendarDay) TableName() string {
	return "calendar_days"
}

type CalendarEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	DayID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType   string    `gorm:"type:varchar(30);not null"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

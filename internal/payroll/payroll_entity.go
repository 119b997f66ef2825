package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft      = "DRAFT"
	StatusInProgress = "IN_PROGRESS"
	StatusCalculated = "CALCULATED"
	StatusApproved   = "APPROVED"
	StatusCancelled  = "CANCELLED"
)

// Payroll is one pay run of a subsidiary over a period. Once it leaves
// DRAFT the header is mutated only through the state-machine methods;
// ConfigurationID pins the configuration version that was active at
// creation time.
type Payroll struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_company_code,unique"`
	SubsidiaryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ConfigurationID uuid.UUID `gorm:"type:uuid;not null;index"`

	Code   string `gorm:"type:varchar(40);not null;index:idx_payroll_company_code,unique"`
	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Year   int    `gorm:"not null"`
	Month  int    `gorm:"not null"`

	// ISO week numbers of the period boundaries, for progress displays.
	WeekStart int `gorm:"not null"`
	WeekEnd   int `gorm:"not null"`

	EstimatedEmployees int `gorm:"not null;default:0"`
	EstimatedTareos    int `gorm:"not null;default:0"`
	ActualEmployees    int `gorm:"not null;default:0"`
	ActualTareos       int `gorm:"not null;default:0"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`

	LaunchedAt          *time.Time `gorm:"index"`
	CalculatedAt        *time.Time
	ApprovedAt          *time.Time
	CancelledAt         *time.Time
	PayslipsGeneratedAt *time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Payroll) TableName() string {
	return "payrolls"
}

// PayrollDetail is the computed result for one employee. Rows are
// written by the external batch engine; this side only reads them.
type PayrollDetail struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PayrollID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`

	NormalHours      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Overtime25Hours  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Overtime35Hours  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Overtime100Hours decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	NightHours       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	DaysWorked       int             `gorm:"not null;default:0"`

	TotalIncome                decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TotalDeductions            decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TotalEmployerContributions decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	NetPay                     decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`

	// Concepts maps concept code -> {amount, category}. DayBreakdown
	// holds the per-day hour decomposition the batch engine produced.
	Concepts     datatypes.JSON `gorm:"type:jsonb"`
	DayBreakdown datatypes.JSON `gorm:"type:jsonb"`

	PayslipURL *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollDetail) TableName() string {
	return "payroll_details"
}

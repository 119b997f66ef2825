package concept

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Concept categories. Closed set: every concept belongs to exactly one.
const (
	CategoryIncome               = "INCOME"
	CategoryDeduction            = "DEDUCTION"
	CategoryRetirement           = "RETIREMENT"
	CategoryEmployeeContribution = "EMPLOYEE_CONTRIBUTION"
	CategoryEmployerContribution = "EMPLOYER_CONTRIBUTION"
)

// Secondary tags drive the named summary sub-totals. A concept carries
// zero or more of these alongside its category.
const (
	TagHealth       = "HEALTH"
	TagRetirement   = "RETIREMENT"
	TagRemuneration = "REMUNERATION"
	TagBonus        = "BONUS"
	TagAFP          = "AFP"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryIncome, CategoryDeduction, CategoryRetirement,
		CategoryEmployeeContribution, CategoryEmployerContribution:
		return true
	}
	return false
}

type Concept struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_concept_company_code,unique"`
	Code         string          `gorm:"type:varchar(60);not null;index:idx_concept_company_code,unique"`
	Name         string          `gorm:"type:varchar(120);not null"`
	Category     string          `gorm:"type:varchar(30);not null;index"`
	Tags         datatypes.JSON  `gorm:"type:jsonb"`
	CurrentValue decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	Priority     int             `gorm:"not null;default:100"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Concept) TableName() string {
	return "concepts"
}

package configuration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MasterConfiguration is one version of the company's concept list. The
// active version is the single non-deleted row per company; versioning
// is soft-delete-and-recreate, never in-place mutation of a version a
// payroll references.
type MasterConfiguration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(40);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Assignments []ConceptAssignment `gorm:"foreignKey:ConfigurationID"`
}

func (MasterConfiguration) TableName() string {
	return "master_configurations"
}

// ConceptAssignment freezes a concept's value at assignment time for a
// configuration version or a payroll. Later changes to the concept's
// current value never touch existing assignments.
type ConceptAssignment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ConfigurationID *uuid.UUID      `gorm:"type:uuid;index"`
	PayrollID       *uuid.UUID      `gorm:"type:uuid;index"`
	ConceptID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ConceptCode     string          `gorm:"type:varchar(60);not null"`
	Category        string          `gorm:"type:varchar(30);not null"`
	Value           decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (ConceptAssignment) TableName() string {
	return "concept_assignments"
}

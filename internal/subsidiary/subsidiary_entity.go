package subsidiary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subsidiary struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID           uuid.UUID `gorm:"type:uuid;not null;index:idx_subsidiary_company_code,unique"`
	Code                string    `gorm:"type:varchar(20);not null;index:idx_subsidiary_company_code,unique"`
	Name                string    `gorm:"type:varchar(120);not null"`
	PaymentIntervalDays int       `gorm:"not null;default:7"`
	DeclarationDay      int       `gorm:"not null;default:5"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Subsidiary) TableName() string {
	return "subsidiaries"
}

// Signer is the person whose signature appears on payslips. SubsidiaryID
// is nullable: a record without one is the company-wide fallback.
type Signer struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubsidiaryID      *uuid.UUID `gorm:"type:uuid;index"`
	FullName          string     `gorm:"type:varchar(120);not null"`
	SignatureImageURL string     `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Signer) TableName() string {
	return "signers"
}

package configuration

import (
	"context"
	"database/sql"

	"agripay/internal/tenant"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=configuration_repo.go -destination=mock/configuration_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindActive(ctx context.Context, companyID string) (*MasterConfiguration, error)
	FindByID(ctx context.Context, companyID, id string) (*MasterConfiguration, error)
	// FindByIDUnscoped also returns soft-deleted versions so historical
	// payrolls can retrieve the configuration they were built with.
	FindByIDUnscoped(ctx context.Context, companyID, id string) (*MasterConfiguration, error)
	Create(ctx context.Context, config *MasterConfiguration) error
	SoftDelete(ctx context.Context, companyID, id string) error
	CountPayrollReferences(ctx context.Context, companyID, configurationID string) (int64, error)

	CreateAssignment(ctx context.Context, assignment *ConceptAssignment) error
	UpdateAssignmentValue(ctx context.Context, assignmentID string, value decimal.Decimal) error
	SoftDeleteAssignment(ctx context.Context, companyID, assignmentID string) error
	SoftDeleteAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) error
	FindAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) ([]ConceptAssignment, error)
	FindAssignmentsForPayroll(ctx context.Context, companyID, payrollID string) ([]ConceptAssignment, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	// The fresh session gets its own statement, so rebinding the
	// connection cannot leak the transaction into the pool repository.
	db := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &repository{db: db, tx: tx}
}

func (r *repository) FindActive(ctx context.Context, companyID string) (*MasterConfiguration, error) {
	var config MasterConfiguration
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Assignments", "deleted_at IS NULL").
		Order("created_at DESC").
		First(&config).Error
	return &config, err
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*MasterConfiguration, error) {
	var config MasterConfiguration
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Assignments", "deleted_at IS NULL").
		First(&config, "id = ?", id).Error
	return &config, err
}

func (r *repository) FindByIDUnscoped(ctx context.Context, companyID, id string) (*MasterConfiguration, error) {
	var config MasterConfiguration
	err := r.db.WithContext(ctx).
		Unscoped().
		Scopes(tenant.Scope(companyID)).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Where("deleted_at IS NULL")
		}).
		First(&config, "id = ?", id).Error
	return &config, err
}

func (r *repository) Create(ctx context.Context, config *MasterConfiguration) error {
	return r.db.WithContext(ctx).Create(config).Error
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&MasterConfiguration{}, "id = ?", id).Error
}

func (r *repository) CountPayrollReferences(ctx context.Context, companyID, configurationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payrolls").
		Scopes(tenant.Scope(companyID)).
		Where("configuration_id = ?", configurationID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *ConceptAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *repository) UpdateAssignmentValue(ctx context.Context, assignmentID string, value decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&ConceptAssignment{}).
		Where("id = ?", assignmentID).
		Update("value", value).Error
}

func (r *repository) SoftDeleteAssignment(ctx context.Context, companyID, assignmentID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&ConceptAssignment{}, "id = ?", assignmentID).Error
}

func (r *repository) SoftDeleteAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&ConceptAssignment{}, "configuration_id = ?", configurationID).Error
}

func (r *repository) FindAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) ([]ConceptAssignment, error) {
	var assignments []ConceptAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("configuration_id = ?", configurationID).
		Order("concept_code ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *repository) FindAssignmentsForPayroll(ctx context.Context, companyID, payrollID string) ([]ConceptAssignment, error) {
	var assignments []ConceptAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_id = ?", payrollID).
		Order("concept_code ASC").
		Find(&assignments).Error
	return assignments, err
}

package payroll

import (
	"context"
	"database/sql"
	"time"

	"agripay/internal/tenant"

	"gorm.io/gorm"
)

// Progress is the live counter pair list views show while the batch
// engine is running.
type Progress struct {
	EmployeesProcessed int64
	TareosProcessed    int64
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, payroll *Payroll) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Payroll, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payroll, error)
	Update(ctx context.Context, payroll *Payroll) error
	SoftDelete(ctx context.Context, companyID, id string) error
	CodeExists(ctx context.Context, companyID, code string) (bool, error)
	CountEmployees(ctx context.Context, companyID, subsidiaryID string) (int64, error)
	CountTareos(ctx context.Context, companyID, subsidiaryID string, from, to time.Time) (int64, error)
	HasDetails(ctx context.Context, companyID, payrollID string) (bool, error)
	FindDetails(ctx context.Context, companyID, payrollID string) ([]PayrollDetail, error)
	DetailProgress(ctx context.Context, companyID, payrollID string) (Progress, error)
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

func (r *repository) Create(ctx context.Context, payroll *Payroll) error {
	return r.db.WithContext(ctx).Create(payroll).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Payroll, error) {
	var payrolls []Payroll
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&payrolls).Error
	return payrolls, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payroll, error) {
	var payroll Payroll
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&payroll, "id = ?", id).Error
	return &payroll, err
}

func (r *repository) Update(ctx context.Context, payroll *Payroll) error {
	return r.db.WithContext(ctx).Save(payroll).Error
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Payroll{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CodeExists(ctx context.Context, companyID, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Payroll{}).
		Scopes(tenant.Scope(companyID)).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountEmployees(ctx context.Context, companyID, subsidiaryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id = ?", subsidiaryID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) CountTareos(
	ctx context.Context,
	companyID, subsidiaryID string,
	from, to time.Time,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("tareos").
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id = ?", subsidiaryID).
		Where("work_date BETWEEN ? AND ?", from, to).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) HasDetails(ctx context.Context, companyID, payrollID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollDetail{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_id = ?", payrollID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindDetails(ctx context.Context, companyID, payrollID string) ([]PayrollDetail, error) {
	var details []PayrollDetail
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_id = ?", payrollID).
		Find(&details).Error
	return details, err
}

// DetailProgress recounts the detail rows on every call so list views
// always show live progress.
func (r *repository) DetailProgress(ctx context.Context, companyID, payrollID string) (Progress, error) {
	var progress Progress

	err := r.db.WithContext(ctx).
		Model(&PayrollDetail{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_id = ?", payrollID).
		Count(&progress.EmployeesProcessed).Error
	if err != nil {
		return Progress{}, err
	}

	row := r.db.WithContext(ctx).
		Model(&PayrollDetail{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_id = ?", payrollID).
		Select("COALESCE(SUM(days_worked), 0)").
		Row()
	if err := row.Scan(&progress.TareosProcessed); err != nil {
		return Progress{}, err
	}

	return progress, nil
}

package period

import (
	"context"
	"database/sql"

	"agripay/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=period_repo.go -destination=mock/period_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, period *PayPeriod) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayPeriod, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayPeriod, error)
	FindLastBySubsidiary(ctx context.Context, companyID, subsidiaryID string) (*PayPeriod, error)
	CountEndingInMonthUpTo(ctx context.Context, companyID, subsidiaryID string, year, month int, endDate string) (int64, error)
	CountPayrollReferences(ctx context.Context, companyID, periodID string) (int64, error)
	SoftDelete(ctx context.Context, companyID, id string) error
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

func (r *repository) Create(ctx context.Context, period *PayPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayPeriod, error) {
	var rows []PayPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("end_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayPeriod, error) {
	var period PayPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	return &period, err
}

// FindLastBySubsidiary returns the period with the latest end date, the
// anchor for implicit-start contiguity.
func (r *repository) FindLastBySubsidiary(ctx context.Context, companyID, subsidiaryID string) (*PayPeriod, error) {
	var period PayPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id = ?", subsidiaryID).
		Order("end_date DESC").
		First(&period).Error
	return &period, err
}

func (r *repository) CountEndingInMonthUpTo(
	ctx context.Context,
	companyID, subsidiaryID string,
	year, month int,
	endDate string,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id = ?", subsidiaryID).
		Where("year = ? AND month = ?", year, month).
		Where("end_date <= ?", endDate).
		Count(&count).Error
	return count, err
}

func (r *repository) CountPayrollReferences(ctx context.Context, companyID, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payrolls").
		Where("company_id = ? AND period_id = ? AND deleted_at IS NULL", companyID, periodID).
		Count(&count).Error
	return count, err
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayPeriod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package subsidiary

import (
	"context"
	"database/sql"
	"errors"

	"agripay/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=subsidiary_repo.go -destination=mock/subsidiary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindAllByCompany(ctx context.Context, companyID string) ([]Subsidiary, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Subsidiary, error)
	FindByCodeAndCompany(ctx context.Context, companyID, code string) (*Subsidiary, error)
	LatestSigner(ctx context.Context, companyID, subsidiaryID string) (*Signer, error)
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

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Subsidiary, error) {
	var rows []Subsidiary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Subsidiary, error) {
	var sub Subsidiary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&sub, "id = ?", id).Error
	return &sub, err
}

func (r *repository) FindByCodeAndCompany(ctx context.Context, companyID, code string) (*Subsidiary, error) {
	var sub Subsidiary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&sub, "code = ?", code).Error
	return &sub, err
}

// LatestSigner returns the newest subsidiary-specific signer, falling
// back to the newest company-wide one when the subsidiary has none.
func (r *repository) LatestSigner(ctx context.Context, companyID, subsidiaryID string) (*Signer, error) {
	var signer Signer
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id = ?", subsidiaryID).
		Order("created_at DESC").
		First(&signer).Error
	if err == nil {
		return &signer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("subsidiary_id IS NULL").
		Order("created_at DESC").
		First(&signer).Error
	if err != nil {
		return nil, err
	}
	return &signer, nil
}

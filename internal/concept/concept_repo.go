package concept

import (
	"context"
	"database/sql"

	"agripay/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=concept_repo.go -destination=mock/concept_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, concept *Concept) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Concept, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Concept, error)
	FindByCode(ctx context.Context, companyID, code string) (*Concept, error)
	FindByCodes(ctx context.Context, companyID string, codes []string) ([]Concept, error)
	Update(ctx context.Context, concept *Concept) error
	Delete(ctx context.Context, companyID, id string) error
	CountAssignments(ctx context.Context, companyID, conceptID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, concept *Concept) error {
	return r.db.WithContext(ctx).Create(concept).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Concept, error) {
	var concepts []Concept
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("priority ASC, code ASC").
		Find(&concepts).Error
	return concepts, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Concept, error) {
	var concept Concept
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&concept, "id = ?", id).Error
	return &concept, err
}

func (r *repository) FindByCode(ctx context.Context, companyID, code string) (*Concept, error) {
	var concept Concept
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&concept, "code = ?", code).Error
	return &concept, err
}

func (r *repository) FindByCodes(ctx context.Context, companyID string, codes []string) ([]Concept, error) {
	var concepts []Concept
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("code IN ?", codes).
		Find(&concepts).Error
	return concepts, err
}

func (r *repository) Update(ctx context.Context, concept *Concept) error {
	return r.db.WithContext(ctx).Save(concept).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Concept{}, "id = ?", id).Error
}

func (r *repository) CountAssignments(ctx context.Context, companyID, conceptID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("concept_assignments").
		Scopes(tenant.Scope(companyID)).
		Where("concept_id = ?", conceptID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

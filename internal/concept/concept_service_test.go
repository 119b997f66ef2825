package concept_test

import (
	"context"
	"database/sql"
	"testing"

	"agripay/internal/concept"
	concepterrors "agripay/internal/concept/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeConceptRepository struct {
	withTxFn             func(tx *sql.Tx) concept.Repository
	createFn             func(ctx context.Context, c *concept.Concept) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]concept.Concept, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*concept.Concept, error)
	findByCodeFn         func(ctx context.Context, companyID, code string) (*concept.Concept, error)
	findByCodesFn        func(ctx context.Context, companyID string, codes []string) ([]concept.Concept, error)
	updateFn             func(ctx context.Context, c *concept.Concept) error
	deleteFn             func(ctx context.Context, companyID, id string) error
	countAssignmentsFn   func(ctx context.Context, companyID, conceptID string) (int64, error)
}

func (f *fakeConceptRepository) WithTx(tx *sql.Tx) concept.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeConceptRepository) Create(ctx context.Context, c *concept.Concept) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeConceptRepository) FindAllByCompany(ctx context.Context, companyID string) ([]concept.Concept, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeConceptRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*concept.Concept, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConceptRepository) FindByCode(ctx context.Context, companyID, code string) (*concept.Concept, error) {
	if f.findByCodeFn != nil {
		return f.findByCodeFn(ctx, companyID, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConceptRepository) FindByCodes(ctx context.Context, companyID string, codes []string) ([]concept.Concept, error) {
	if f.findByCodesFn != nil {
		return f.findByCodesFn(ctx, companyID, codes)
	}
	return nil, nil
}

func (f *fakeConceptRepository) Update(ctx context.Context, c *concept.Concept) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeConceptRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakeConceptRepository) CountAssignments(ctx context.Context, companyID, conceptID string) (int64, error) {
	if f.countAssignmentsFn != nil {
		return f.countAssignmentsFn(ctx, companyID, conceptID)
	}
	return 0, nil
}

type conceptServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service concept.Service
	repo    *fakeConceptRepository
}

func setupConceptServiceTest(t *testing.T) *conceptServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeConceptRepository{}
	svc := concept.NewService(db, repo)

	return &conceptServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestConceptService_Create_NormalizesInput(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupConceptServiceTest(t)
	defer deps.db.Close()

	var created *concept.Concept
	deps.repo.createFn = func(ctx context.Context, c *concept.Concept) error {
		created = c
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Create(ctx, companyID, concept.CreateConceptRequest{
		Code:     " basic_salary ",
		Name:     "Basic Salary",
		Category: "income",
		Tags:     []string{" remuneration ", "", "bonus"},
		Value:    "51.25",
	})

	assert.NoError(t, err)
	assert.Equal(t, "BASIC_SALARY", created.Code)
	assert.Equal(t, concept.CategoryIncome, created.Category)
	assert.True(t, created.CurrentValue.Equal(decimal.RequireFromString("51.25")))
	assert.Equal(t, 100, created.Priority)
	assert.Equal(t, []string{"REMUNERATION", "BONUS"}, resp.Tags)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestConceptService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("unknown category", func(t *testing.T) {
		deps := setupConceptServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, concept.CreateConceptRequest{
			Code:     "BASIC_SALARY",
			Name:     "Basic Salary",
			Category: "WAGES",
			Value:    "51.25",
		})

		assert.ErrorIs(t, err, concepterrors.ErrInvalidCategory)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed value", func(t *testing.T) {
		deps := setupConceptServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, concept.CreateConceptRequest{
			Code:     "BASIC_SALARY",
			Name:     "Basic Salary",
			Category: concept.CategoryIncome,
			Value:    "fifty",
		})

		assert.ErrorIs(t, err, concepterrors.ErrInvalidValue)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestConceptService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupConceptServiceTest(t)
	defer deps.db.Close()

	deps.repo.createFn = func(ctx context.Context, c *concept.Concept) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_concept_company_code"}
	}

	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.Create(ctx, companyID, concept.CreateConceptRequest{
		Code:     "BASIC_SALARY",
		Name:     "Basic Salary",
		Category: concept.CategoryIncome,
		Value:    "51.25",
	})

	assert.ErrorIs(t, err, concepterrors.ErrConceptCodeExists)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestConceptService_Update_KeepsFrozenSnapshots(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	conceptID := uuid.New()

	deps := setupConceptServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*concept.Concept, error) {
		return &concept.Concept{
			ID:           conceptID,
			CompanyID:    uuid.MustParse(cid),
			Code:         "BASIC_SALARY",
			Name:         "Basic Salary",
			Category:     concept.CategoryIncome,
			CurrentValue: decimal.NewFromInt(50),
			Priority:     10,
		}, nil
	}
	var updated *concept.Concept
	deps.repo.updateFn = func(ctx context.Context, c *concept.Concept) error {
		updated = c
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Update(ctx, companyID, conceptID.String(), concept.UpdateConceptRequest{
		Name:     "Jornal Basico",
		Category: concept.CategoryIncome,
		Value:    "55",
	})

	assert.NoError(t, err)
	assert.True(t, updated.CurrentValue.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, "Jornal Basico", resp.Name)
	// Priority untouched when the request omits it.
	assert.Equal(t, 10, resp.Priority)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestConceptService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	conceptID := uuid.New()

	t.Run("blocked while assignments reference it", func(t *testing.T) {
		deps := setupConceptServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*concept.Concept, error) {
			return &concept.Concept{ID: conceptID, CompanyID: uuid.MustParse(cid), Code: "BASIC_SALARY"}, nil
		}
		deps.repo.countAssignmentsFn = func(ctx context.Context, cid, id string) (int64, error) {
			return 4, nil
		}

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx, companyID, conceptID.String())

		assert.ErrorIs(t, err, concepterrors.ErrConceptReferenced)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("deletes unreferenced concept", func(t *testing.T) {
		deps := setupConceptServiceTest(t)
		defer deps.db.Close()

		deleted := false
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*concept.Concept, error) {
			return &concept.Concept{ID: conceptID, CompanyID: uuid.MustParse(cid), Code: "BASIC_SALARY"}, nil
		}
		deps.repo.deleteFn = func(ctx context.Context, cid, id string) error {
			deleted = true
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		err := deps.service.Delete(ctx, companyID, conceptID.String())

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupConceptServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx, companyID, conceptID.String())

		assert.ErrorIs(t, err, concepterrors.ErrConceptNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

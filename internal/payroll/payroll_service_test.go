package payroll_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"agripay/internal/configuration"
	"agripay/internal/jobs"
	"agripay/internal/payroll"
	payrollerrors "agripay/internal/payroll/errors"
	"agripay/internal/period"
	"agripay/internal/shared/apperror"
	"agripay/internal/subsidiary"
	subsidiaryerrors "agripay/internal/subsidiary/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePayrollRepository struct {
	withTxFn             func(tx *sql.Tx) payroll.Repository
	createFn             func(ctx context.Context, p *payroll.Payroll) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]payroll.Payroll, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*payroll.Payroll, error)
	updateFn             func(ctx context.Context, p *payroll.Payroll) error
	softDeleteFn         func(ctx context.Context, companyID, id string) error
	codeExistsFn         func(ctx context.Context, companyID, code string) (bool, error)
	countEmployeesFn     func(ctx context.Context, companyID, subsidiaryID string) (int64, error)
	countTareosFn        func(ctx context.Context, companyID, subsidiaryID string, from, to time.Time) (int64, error)
	hasDetailsFn         func(ctx context.Context, companyID, payrollID string) (bool, error)
	findDetailsFn        func(ctx context.Context, companyID, payrollID string) ([]payroll.PayrollDetail, error)
	detailProgressFn     func(ctx context.Context, companyID, payrollID string) (payroll.Progress, error)
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) payroll.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakePayrollRepository) Create(ctx context.Context, p *payroll.Payroll) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) FindAllByCompany(ctx context.Context, companyID string) ([]payroll.Payroll, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payroll.Payroll, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) Update(ctx context.Context, p *payroll.Payroll) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}
	return nil
}

func (f *fakePayrollRepository) SoftDelete(ctx context.Context, companyID, id string) error {
	if f.softDeleteFn != nil {
		return f.softDeleteFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakePayrollRepository) CodeExists(ctx context.Context, companyID, code string) (bool, error) {
	if f.codeExistsFn != nil {
		return f.codeExistsFn(ctx, companyID, code)
	}
	return false, nil
}

func (f *fakePayrollRepository) CountEmployees(ctx context.Context, companyID, subsidiaryID string) (int64, error) {
	if f.countEmployeesFn != nil {
		return f.countEmployeesFn(ctx, companyID, subsidiaryID)
	}
	return 0, nil
}

func (f *fakePayrollRepository) CountTareos(ctx context.Context, companyID, subsidiaryID string, from, to time.Time) (int64, error) {
	if f.countTareosFn != nil {
		return f.countTareosFn(ctx, companyID, subsidiaryID, from, to)
	}
	return 0, nil
}

func (f *fakePayrollRepository) HasDetails(ctx context.Context, companyID, payrollID string) (bool, error) {
	if f.hasDetailsFn != nil {
		return f.hasDetailsFn(ctx, companyID, payrollID)
	}
	return false, nil
}

func (f *fakePayrollRepository) FindDetails(ctx context.Context, companyID, payrollID string) ([]payroll.PayrollDetail, error) {
	if f.findDetailsFn != nil {
		return f.findDetailsFn(ctx, companyID, payrollID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) DetailProgress(ctx context.Context, companyID, payrollID string) (payroll.Progress, error) {
	if f.detailProgressFn != nil {
		return f.detailProgressFn(ctx, companyID, payrollID)
	}
	return payroll.Progress{}, nil
}

type fakeSubsidiaryRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*subsidiary.Subsidiary, error)
	latestSignerFn       func(ctx context.Context, companyID, subsidiaryID string) (*subsidiary.Signer, error)
}

func (f *fakeSubsidiaryRepository) WithTx(tx *sql.Tx) subsidiary.Repository {
	return f
}

func (f *fakeSubsidiaryRepository) FindAllByCompany(ctx context.Context, companyID string) ([]subsidiary.Subsidiary, error) {
	return nil, nil
}

func (f *fakeSubsidiaryRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*subsidiary.Subsidiary, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubsidiaryRepository) FindByCodeAndCompany(ctx context.Context, companyID, code string) (*subsidiary.Subsidiary, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubsidiaryRepository) LatestSigner(ctx context.Context, companyID, subsidiaryID string) (*subsidiary.Signer, error) {
	if f.latestSignerFn != nil {
		return f.latestSignerFn(ctx, companyID, subsidiaryID)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePeriodRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*period.PayPeriod, error)
}

func (f *fakePeriodRepository) WithTx(tx *sql.Tx) period.Repository {
	return f
}

func (f *fakePeriodRepository) Create(ctx context.Context, p *period.PayPeriod) error {
	return nil
}

func (f *fakePeriodRepository) FindAllByCompany(ctx context.Context, companyID string) ([]period.PayPeriod, error) {
	return nil, nil
}

func (f *fakePeriodRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*period.PayPeriod, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePeriodRepository) FindLastBySubsidiary(ctx context.Context, companyID, subsidiaryID string) (*period.PayPeriod, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePeriodRepository) CountEndingInMonthUpTo(ctx context.Context, companyID, subsidiaryID string, year, month int, endDate string) (int64, error) {
	return 0, nil
}

func (f *fakePeriodRepository) CountPayrollReferences(ctx context.Context, companyID, periodID string) (int64, error) {
	return 0, nil
}

func (f *fakePeriodRepository) SoftDelete(ctx context.Context, companyID, id string) error {
	return nil
}

type fakeConfigurationRepository struct {
	findActiveFn       func(ctx context.Context, companyID string) (*configuration.MasterConfiguration, error)
	createAssignmentFn func(ctx context.Context, assignment *configuration.ConceptAssignment) error
}

func (f *fakeConfigurationRepository) WithTx(tx *sql.Tx) configuration.Repository {
	return f
}

func (f *fakeConfigurationRepository) FindActive(ctx context.Context, companyID string) (*configuration.MasterConfiguration, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, companyID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConfigurationRepository) FindByID(ctx context.Context, companyID, id string) (*configuration.MasterConfiguration, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConfigurationRepository) FindByIDUnscoped(ctx context.Context, companyID, id string) (*configuration.MasterConfiguration, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConfigurationRepository) Create(ctx context.Context, config *configuration.MasterConfiguration) error {
	return nil
}

func (f *fakeConfigurationRepository) SoftDelete(ctx context.Context, companyID, id string) error {
	return nil
}

func (f *fakeConfigurationRepository) CountPayrollReferences(ctx context.Context, companyID, configurationID string) (int64, error) {
	return 0, nil
}

func (f *fakeConfigurationRepository) CreateAssignment(ctx context.Context, assignment *configuration.ConceptAssignment) error {
	if f.createAssignmentFn != nil {
		return f.createAssignmentFn(ctx, assignment)
	}
	return nil
}

func (f *fakeConfigurationRepository) UpdateAssignmentValue(ctx context.Context, assignmentID string, value decimal.Decimal) error {
	return nil
}

func (f *fakeConfigurationRepository) SoftDeleteAssignment(ctx context.Context, companyID, assignmentID string) error {
	return nil
}

func (f *fakeConfigurationRepository) SoftDeleteAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) error {
	return nil
}

func (f *fakeConfigurationRepository) FindAssignmentsForConfiguration(ctx context.Context, companyID, configurationID string) ([]configuration.ConceptAssignment, error) {
	return nil, nil
}

func (f *fakeConfigurationRepository) FindAssignmentsForPayroll(ctx context.Context, companyID, payrollID string) ([]configuration.ConceptAssignment, error) {
	return nil, nil
}

type fakeLauncher struct {
	launchFn func(ctx context.Context, jobName string, params map[string]any) error
	calls    []string
}

func (f *fakeLauncher) Launch(ctx context.Context, jobName string, params map[string]any) error {
	f.calls = append(f.calls, jobName)
	if f.launchFn != nil {
		return f.launchFn(ctx, jobName, params)
	}
	return nil
}

type payrollServiceDeps struct {
	db             *sql.DB
	sqlMock        sqlmock.Sqlmock
	service        payroll.Service
	repo           *fakePayrollRepository
	subsidiaries   *fakeSubsidiaryRepository
	periods        *fakePeriodRepository
	configurations *fakeConfigurationRepository
	launcher       *fakeLauncher
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePayrollRepository{}
	subs := &fakeSubsidiaryRepository{}
	periods := &fakePeriodRepository{}
	configs := &fakeConfigurationRepository{}
	launcher := &fakeLauncher{}
	svc := payroll.NewService(db, repo, subs, periods, configs, launcher)

	return &payrollServiceDeps{
		db:             db,
		sqlMock:        sqlMock,
		service:        svc,
		repo:           repo,
		subsidiaries:   subs,
		periods:        periods,
		configurations: configs,
		launcher:       launcher,
	}
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

func signedSigner(subsidiaryID uuid.UUID) *subsidiary.Signer {
	return &subsidiary.Signer{
		ID:                uuid.New(),
		SubsidiaryID:      &subsidiaryID,
		FullName:          "Maria Quispe",
		SignatureImageURL: "https://cdn.example.com/signatures/mquispe.png",
	}
}

func TestPayrollService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	subsidiaryID := uuid.New()
	periodID := uuid.New()
	configID := uuid.New()
	conceptID := uuid.New()

	deps := setupPayrollServiceTest(t)
	defer deps.db.Close()

	deps.subsidiaries.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*subsidiary.Subsidiary, error) {
		return &subsidiary.Subsidiary{ID: subsidiaryID, CompanyID: uuid.MustParse(cid), Code: "OLMOS"}, nil
	}
	deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
		return signedSigner(subsidiaryID), nil
	}
	deps.periods.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*period.PayPeriod, error) {
		return &period.PayPeriod{
			ID:           periodID,
			SubsidiaryID: subsidiaryID,
			Year:         2024,
			Month:        1,
			Number:       2,
			StartDate:    time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
		}, nil
	}
	deps.configurations.findActiveFn = func(ctx context.Context, cid string) (*configuration.MasterConfiguration, error) {
		frozen := decimal.RequireFromString("51.25")
		return &configuration.MasterConfiguration{
			ID:        configID,
			CompanyID: uuid.MustParse(cid),
			Code:      "CFG-20240101-000000",
			Assignments: []configuration.ConceptAssignment{
				{ID: uuid.New(), ConfigurationID: &configID, ConceptID: conceptID, ConceptCode: "BASIC_SALARY", Category: "INCOME", Value: frozen},
			},
		}, nil
	}
	deps.repo.countEmployeesFn = func(ctx context.Context, cid, sid string) (int64, error) {
		return 120, nil
	}
	deps.repo.countTareosFn = func(ctx context.Context, cid, sid string, from, to time.Time) (int64, error) {
		return 840, nil
	}

	var created *payroll.Payroll
	deps.repo.createFn = func(ctx context.Context, p *payroll.Payroll) error {
		created = p
		return nil
	}
	var snapshots []configuration.ConceptAssignment
	deps.configurations.createAssignmentFn = func(ctx context.Context, assignment *configuration.ConceptAssignment) error {
		snapshots = append(snapshots, *assignment)
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Create(ctx, companyID, actorID, payroll.CreatePayrollRequest{
		SubsidiaryID: subsidiaryID.String(),
		PeriodID:     periodID.String(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "OLMOS-2024-01-2", resp.Code)
	assert.Equal(t, payroll.StatusDraft, resp.Status)
	assert.Equal(t, 120, resp.EstimatedEmployees)
	assert.Equal(t, 840, resp.EstimatedTareos)
	assert.Equal(t, configID, created.ConfigurationID)

	// The payroll keeps the configuration's frozen value, not the
	// concept's live one.
	assert.Len(t, snapshots, 1)
	assert.Equal(t, created.ID, *snapshots[0].PayrollID)
	assert.Nil(t, snapshots[0].ConfigurationID)
	assert.Equal(t, "BASIC_SALARY", snapshots[0].ConceptCode)
	assert.True(t, snapshots[0].Value.Equal(decimal.RequireFromString("51.25")))
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollService_Create_CodeWithoutSuffixForFirstPeriod(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	subsidiaryID := uuid.New()
	periodID := uuid.New()
	configID := uuid.New()

	deps := setupPayrollServiceTest(t)
	defer deps.db.Close()

	deps.subsidiaries.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*subsidiary.Subsidiary, error) {
		return &subsidiary.Subsidiary{ID: subsidiaryID, CompanyID: uuid.MustParse(cid), Code: "VIRU"}, nil
	}
	deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
		return signedSigner(subsidiaryID), nil
	}
	deps.periods.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*period.PayPeriod, error) {
		return &period.PayPeriod{
			ID: periodID, SubsidiaryID: subsidiaryID, Year: 2024, Month: 3, Number: 1,
			StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		}, nil
	}
	deps.configurations.findActiveFn = func(ctx context.Context, cid string) (*configuration.MasterConfiguration, error) {
		return &configuration.MasterConfiguration{ID: configID, CompanyID: uuid.MustParse(cid)}, nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Create(ctx, companyID, actorID, payroll.CreatePayrollRequest{
		SubsidiaryID: subsidiaryID.String(),
		PeriodID:     periodID.String(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "VIRU-2024-03", resp.Code)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	subsidiaryID := uuid.New()
	periodID := uuid.New()
	configID := uuid.New()

	deps := setupPayrollServiceTest(t)
	defer deps.db.Close()

	deps.subsidiaries.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*subsidiary.Subsidiary, error) {
		return &subsidiary.Subsidiary{ID: subsidiaryID, CompanyID: uuid.MustParse(cid), Code: "OLMOS"}, nil
	}
	deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
		return signedSigner(subsidiaryID), nil
	}
	deps.periods.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*period.PayPeriod, error) {
		return &period.PayPeriod{ID: periodID, SubsidiaryID: subsidiaryID, Year: 2024, Month: 1, Number: 1}, nil
	}
	deps.configurations.findActiveFn = func(ctx context.Context, cid string) (*configuration.MasterConfiguration, error) {
		return &configuration.MasterConfiguration{ID: configID, CompanyID: uuid.MustParse(cid)}, nil
	}
	deps.repo.codeExistsFn = func(ctx context.Context, cid, code string) (bool, error) {
		assert.Equal(t, "OLMOS-2024-01", code)
		return true, nil
	}

	expectTx(t, deps.sqlMock, false)

	_, err := deps.service.Create(ctx, companyID, actorID, payroll.CreatePayrollRequest{
		SubsidiaryID: subsidiaryID.String(),
		PeriodID:     periodID.String(),
	})

	assert.ErrorIs(t, err, payrollerrors.ErrPayrollCodeExists)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollService_Create_SignerGuards(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	subsidiaryID := uuid.New()

	t.Run("missing signer", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.subsidiaries.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*subsidiary.Subsidiary, error) {
			return &subsidiary.Subsidiary{ID: subsidiaryID, CompanyID: uuid.MustParse(cid), Code: "OLMOS"}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, actorID, payroll.CreatePayrollRequest{
			SubsidiaryID: subsidiaryID.String(),
			PeriodID:     uuid.New().String(),
		})

		assert.ErrorIs(t, err, subsidiaryerrors.ErrSignerNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("signer without signature image", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.subsidiaries.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*subsidiary.Subsidiary, error) {
			return &subsidiary.Subsidiary{ID: subsidiaryID, CompanyID: uuid.MustParse(cid), Code: "OLMOS"}, nil
		}
		deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
			return &subsidiary.Signer{ID: uuid.New(), FullName: "Maria Quispe"}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, companyID, actorID, payroll.CreatePayrollRequest{
			SubsidiaryID: subsidiaryID.String(),
			PeriodID:     uuid.New().String(),
		})

		assert.ErrorIs(t, err, subsidiaryerrors.ErrSignerMissingSignature)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_Launch(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	payrollID := uuid.New().String()
	subsidiaryID := uuid.New()

	t.Run("success dispatches calculation job", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		status := payroll.StatusDraft
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{
				ID:           uuid.MustParse(id),
				CompanyID:    uuid.MustParse(cid),
				SubsidiaryID: subsidiaryID,
				Code:         "OLMOS-2024-01",
				Status:       status,
			}, nil
		}
		deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
			return signedSigner(subsidiaryID), nil
		}
		var updated *payroll.Payroll
		deps.repo.updateFn = func(ctx context.Context, p *payroll.Payroll) error {
			updated = p
			status = p.Status
			return nil
		}
		var dispatched map[string]any
		deps.launcher.launchFn = func(ctx context.Context, jobName string, params map[string]any) error {
			dispatched = params
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Launch(ctx, companyID, actorID, payrollID)

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusInProgress, resp.Status)
		assert.NotNil(t, updated.LaunchedAt)
		assert.Equal(t, []string{jobs.JobPayrollCalculation}, deps.launcher.calls)
		assert.Equal(t, payrollID, dispatched["payroll_id"])
		assert.Equal(t, companyID, dispatched["company_id"])
		assert.Equal(t, actorID, dispatched["requested_by"])
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects non-draft payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusCalculated}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Launch(ctx, companyID, actorID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.launcher.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("dispatch failure keeps committed state", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		status := payroll.StatusDraft
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{
				ID:           uuid.MustParse(id),
				CompanyID:    uuid.MustParse(cid),
				SubsidiaryID: subsidiaryID,
				Status:       status,
			}, nil
		}
		deps.subsidiaries.latestSignerFn = func(ctx context.Context, cid, sid string) (*subsidiary.Signer, error) {
			return signedSigner(subsidiaryID), nil
		}
		deps.repo.updateFn = func(ctx context.Context, p *payroll.Payroll) error {
			status = p.Status
			return nil
		}
		deps.launcher.launchFn = func(ctx context.Context, jobName string, params map[string]any) error {
			return errors.New("broker unavailable")
		}

		// The state flip commits before the dispatch attempt.
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Launch(ctx, companyID, actorID, payrollID)

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeServiceUnavailable, appErr.Code)
		assert.Equal(t, payroll.StatusInProgress, status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_MarkCalculated(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	payrollID := uuid.New().String()

	deps := setupPayrollServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
		return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusInProgress}, nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.MarkCalculated(ctx, companyID, payrollID, payroll.MarkCalculatedRequest{
		ActualEmployees: 117,
		ActualTareos:    812,
	})

	assert.NoError(t, err)
	assert.Equal(t, payroll.StatusCalculated, resp.Status)
	assert.Equal(t, 117, resp.ActualEmployees)
	assert.Equal(t, 812, resp.ActualTareos)
	assert.NotNil(t, resp.CalculatedAt)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollService_Approve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	payrollID := uuid.New().String()

	t.Run("approves calculated payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		var updated *payroll.Payroll
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusCalculated}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, p *payroll.Payroll) error {
			updated = p
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, companyID, actorID, payrollID)

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusApproved, resp.Status)
		assert.Equal(t, actorID, updated.ApprovedBy.String())
		assert.NotNil(t, resp.ApprovedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects draft payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusDraft}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, companyID, actorID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_RequestPayslips(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	payrollID := uuid.New().String()

	t.Run("dispatches for approved payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusApproved}, nil
		}

		err := deps.service.RequestPayslips(ctx, companyID, actorID, payrollID)

		assert.NoError(t, err)
		assert.Equal(t, []string{jobs.JobPayslipGeneration}, deps.launcher.calls)
	})

	t.Run("rejects when payslips already generated", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		generatedAt := time.Now()
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{
				ID:                  uuid.MustParse(id),
				CompanyID:           uuid.MustParse(cid),
				Status:              payroll.StatusApproved,
				PayslipsGeneratedAt: &generatedAt,
			}, nil
		}

		err := deps.service.RequestPayslips(ctx, companyID, actorID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipsAlreadyGenerated)
		assert.Empty(t, deps.launcher.calls)
	})

	t.Run("rejects draft payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusDraft}, nil
		}

		err := deps.service.RequestPayslips(ctx, companyID, actorID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.launcher.calls)
	})
}

func TestPayrollService_Cancel(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	payrollID := uuid.New().String()

	t.Run("cancels calculated payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusCalculated}, nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Cancel(ctx, companyID, payrollID)

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects after payslips exist", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		generatedAt := time.Now()
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{
				ID:                  uuid.MustParse(id),
				CompanyID:           uuid.MustParse(cid),
				Status:              payroll.StatusApproved,
				PayslipsGeneratedAt: &generatedAt,
			}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Cancel(ctx, companyID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipsAlreadyGenerated)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects in-progress payroll", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusInProgress}, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Cancel(ctx, companyID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	payrollID := uuid.New().String()

	t.Run("only draft", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusApproved}, nil
		}

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx, companyID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrDeleteOnlyDraft)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("blocked when details exist", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusDraft}, nil
		}
		deps.repo.hasDetailsFn = func(ctx context.Context, cid, pid string) (bool, error) {
			return true, nil
		}

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx, companyID, payrollID)

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollHasDetails)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("soft deletes clean draft", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deleted := false
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payroll.Payroll, error) {
			return &payroll.Payroll{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(cid), Status: payroll.StatusDraft}, nil
		}
		deps.repo.softDeleteFn = func(ctx context.Context, cid, id string) error {
			deleted = true
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		err := deps.service.Delete(ctx, companyID, payrollID)

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_GetAll_IncludesProgress(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	deps := setupPayrollServiceTest(t)
	defer deps.db.Close()

	generatedAt := time.Now()
	deps.repo.findAllByCompanyFn = func(ctx context.Context, cid string) ([]payroll.Payroll, error) {
		return []payroll.Payroll{
			{ID: uuid.New(), CompanyID: uuid.MustParse(cid), Code: "OLMOS-2024-01", Status: payroll.StatusInProgress, EstimatedEmployees: 120, EstimatedTareos: 840},
			{ID: uuid.New(), CompanyID: uuid.MustParse(cid), Code: "OLMOS-2023-12-2", Status: payroll.StatusApproved, PayslipsGeneratedAt: &generatedAt},
		}, nil
	}
	deps.repo.detailProgressFn = func(ctx context.Context, cid, pid string) (payroll.Progress, error) {
		return payroll.Progress{EmployeesProcessed: 45, TareosProcessed: 310}, nil
	}

	entries, err := deps.service.GetAll(ctx, companyID)

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(45), entries[0].EmployeesProcessed)
	assert.Equal(t, int64(310), entries[0].TareosProcessed)
	assert.False(t, entries[0].HasPayslips)
	assert.True(t, entries[1].HasPayslips)
}

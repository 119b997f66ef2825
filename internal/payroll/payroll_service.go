package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agripay/internal/configuration"
	configurationerrors "agripay/internal/configuration/errors"
	"agripay/internal/jobs"
	payrollerrors "agripay/internal/payroll/errors"
	"agripay/internal/period"
	perioderrors "agripay/internal/period/errors"
	"agripay/internal/shared/apperror"
	"agripay/internal/subsidiary"
	subsidiaryerrors "agripay/internal/subsidiary/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePayrollRequest) (CreatePayrollResponse, error)
	Launch(ctx context.Context, companyID, actorID, id string) (PayrollResponse, error)
	MarkCalculated(ctx context.Context, companyID, id string, req MarkCalculatedRequest) (PayrollResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (PayrollResponse, error)
	RequestPayslips(ctx context.Context, companyID, actorID, id string) error
	MarkPayslipsGenerated(ctx context.Context, companyID, id string) error
	Cancel(ctx context.Context, companyID, id string) (PayrollResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	GetAll(ctx context.Context, companyID string) ([]PayrollListEntry, error)
	GetByID(ctx context.Context, companyID, id string) (PayrollResponse, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	subsidiaries   subsidiary.Repository
	periods        period.Repository
	configurations configuration.Repository
	launcher       jobs.Launcher
	logger         *zap.Logger
	now            func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	subsidiaries subsidiary.Repository,
	periods period.Repository,
	configurations configuration.Repository,
	launcher jobs.Launcher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:             db,
		repo:           repo,
		subsidiaries:   subsidiaries,
		periods:        periods,
		configurations: configurations,
		launcher:       launcher,
		logger:         l,
		now:            time.Now,
	}
}

// buildCode derives the unique payroll code from the subsidiary and the
// period, with a numeric suffix when several periods close in the same
// month.
func buildCode(subsidiaryCode string, year, month, periodNumber int) string {
	code := fmt.Sprintf("%s-%d-%02d", subsidiaryCode, year, month)
	if periodNumber > 1 {
		code = fmt.Sprintf("%s-%d", code, periodNumber)
	}
	return code
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreatePayrollRequest,
) (CreatePayrollResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CreatePayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CreatePayrollResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return CreatePayrollResponse{}, payrollerrors.ErrInvalidActorID
	}

	sub, err := s.subsidiaries.FindByIDAndCompany(ctx, companyID, req.SubsidiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreatePayrollResponse{}, subsidiaryerrors.ErrSubsidiaryNotFound
		}
		return CreatePayrollResponse{}, err
	}

	if err := s.requireSigner(ctx, companyID, req.SubsidiaryID); err != nil {
		return CreatePayrollResponse{}, err
	}

	p, err := s.periods.FindByIDAndCompany(ctx, companyID, req.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreatePayrollResponse{}, perioderrors.ErrPeriodNotFound
		}
		return CreatePayrollResponse{}, err
	}

	active, err := s.configurations.WithTx(tx).FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreatePayrollResponse{}, configurationerrors.ErrNoActiveConfiguration
		}
		return CreatePayrollResponse{}, err
	}

	code := buildCode(sub.Code, p.Year, p.Month, p.Number)
	exists, err := qtx.CodeExists(ctx, companyID, code)
	if err != nil {
		return CreatePayrollResponse{}, err
	}
	if exists {
		return CreatePayrollResponse{}, payrollerrors.ErrPayrollCodeExists
	}

	estimatedEmployees, err := qtx.CountEmployees(ctx, companyID, req.SubsidiaryID)
	if err != nil {
		return CreatePayrollResponse{}, err
	}
	estimatedTareos, err := qtx.CountTareos(ctx, companyID, req.SubsidiaryID, p.StartDate, p.EndDate)
	if err != nil {
		return CreatePayrollResponse{}, err
	}

	_, weekStart := p.StartDate.ISOWeek()
	_, weekEnd := p.EndDate.ISOWeek()

	payroll := &Payroll{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		SubsidiaryID:       sub.ID,
		PeriodID:           p.ID,
		ConfigurationID:    active.ID,
		Code:               code,
		Status:             StatusDraft,
		Year:               p.Year,
		Month:              p.Month,
		WeekStart:          weekStart,
		WeekEnd:            weekEnd,
		EstimatedEmployees: int(estimatedEmployees),
		EstimatedTareos:    int(estimatedTareos),
		CreatedBy:          actorUUID,
	}
	if err := qtx.Create(ctx, payroll); err != nil {
		return CreatePayrollResponse{}, mapRepositoryError(err)
	}

	// Copy the active configuration's frozen values onto the payroll,
	// so later configuration versions never change this run.
	configRepo := s.configurations.WithTx(tx)
	for _, assignment := range active.Assignments {
		snapshot := configuration.ConceptAssignment{
			ID:          uuid.New(),
			CompanyID:   companyUUID,
			PayrollID:   &payroll.ID,
			ConceptID:   assignment.ConceptID,
			ConceptCode: assignment.ConceptCode,
			Category:    assignment.Category,
			Value:       assignment.Value,
		}
		if err := configRepo.CreateAssignment(ctx, &snapshot); err != nil {
			return CreatePayrollResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return CreatePayrollResponse{}, err
	}

	s.logger.Info("payroll created",
		zap.String("company_id", companyID),
		zap.String("payroll_id", payroll.ID.String()),
		zap.String("code", payroll.Code),
		zap.Int("estimated_employees", payroll.EstimatedEmployees),
		zap.Int("estimated_tareos", payroll.EstimatedTareos),
	)

	return CreatePayrollResponse{
		ID:                 payroll.ID.String(),
		Code:               payroll.Code,
		Status:             payroll.Status,
		EstimatedEmployees: payroll.EstimatedEmployees,
		EstimatedTareos:    payroll.EstimatedTareos,
		CreatedAt:          payroll.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          payroll.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// Launch flips DRAFT to IN_PROGRESS and commits, then dispatches the
// batch calculation job outside any transaction. A dispatch failure is
// surfaced, but the committed state stands: operators retry a stuck
// IN_PROGRESS payroll instead of finding it silently reset.
func (s *service) Launch(ctx context.Context, companyID, actorID, id string) (PayrollResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if payroll.Status != StatusDraft {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}
	if err := s.requireSigner(ctx, companyID, payroll.SubsidiaryID.String()); err != nil {
		return PayrollResponse{}, err
	}

	launchedAt := s.now()
	payroll.Status = StatusInProgress
	payroll.LaunchedAt = &launchedAt
	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	err = s.launcher.Launch(ctx, jobs.JobPayrollCalculation, map[string]any{
		"payroll_id":   id,
		"company_id":   companyID,
		"requested_by": actorID,
	})
	if err != nil {
		s.logger.Error("batch calculation dispatch failed after launch",
			zap.String("company_id", companyID),
			zap.String("payroll_id", id),
			zap.Error(err),
		)
		return PayrollResponse{}, apperror.Wrap(
			err,
			apperror.CodeServiceUnavailable,
			"payroll launched but batch job dispatch failed",
			http.StatusBadGateway,
		)
	}

	s.logger.Info("payroll launched",
		zap.String("company_id", companyID),
		zap.String("payroll_id", id),
		zap.String("code", payroll.Code),
	)

	refreshed, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*refreshed), nil
}

func (s *service) MarkCalculated(
	ctx context.Context,
	companyID, id string,
	req MarkCalculatedRequest,
) (PayrollResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if payroll.Status != StatusInProgress {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	calculatedAt := s.now()
	payroll.Status = StatusCalculated
	payroll.CalculatedAt = &calculatedAt
	payroll.ActualEmployees = req.ActualEmployees
	payroll.ActualTareos = req.ActualTareos
	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("payroll calculated",
		zap.String("company_id", companyID),
		zap.String("payroll_id", id),
		zap.Int("actual_employees", req.ActualEmployees),
		zap.Int("actual_tareos", req.ActualTareos),
	)
	return mapToResponse(*payroll), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (PayrollResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidActorID
	}

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if payroll.Status != StatusCalculated {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	approvedAt := s.now()
	payroll.Status = StatusApproved
	payroll.ApprovedAt = &approvedAt
	payroll.ApprovedBy = &actorUUID
	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("payroll approved",
		zap.String("company_id", companyID),
		zap.String("payroll_id", id),
	)
	return mapToResponse(*payroll), nil
}

// RequestPayslips dispatches the payslip-generation job for a payroll
// that is calculated or approved and has no payslips yet. The consumer
// marks PayslipsGeneratedAt when generation finishes.
func (s *service) RequestPayslips(ctx context.Context, companyID, actorID, id string) error {
	payroll, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if payroll.Status != StatusCalculated && payroll.Status != StatusApproved {
		return payrollerrors.ErrInvalidStatusTransition
	}
	if payroll.PayslipsGeneratedAt != nil {
		return payrollerrors.ErrPayslipsAlreadyGenerated
	}

	err = s.launcher.Launch(ctx, jobs.JobPayslipGeneration, map[string]any{
		"payroll_id":   id,
		"company_id":   companyID,
		"requested_by": actorID,
	})
	if err != nil {
		s.logger.Error("payslip generation dispatch failed",
			zap.String("company_id", companyID),
			zap.String("payroll_id", id),
			zap.Error(err),
		)
		return apperror.Wrap(
			err,
			apperror.CodeServiceUnavailable,
			"payslip generation dispatch failed",
			http.StatusBadGateway,
		)
	}

	s.logger.Info("payslip generation requested",
		zap.String("company_id", companyID),
		zap.String("payroll_id", id),
	)
	return nil
}

func (s *service) MarkPayslipsGenerated(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if payroll.Status != StatusCalculated && payroll.Status != StatusApproved {
		return payrollerrors.ErrInvalidStatusTransition
	}

	generatedAt := s.now()
	payroll.PayslipsGeneratedAt = &generatedAt
	if err := qtx.Update(ctx, payroll); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) Cancel(ctx context.Context, companyID, id string) (PayrollResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if payroll.Status != StatusCalculated && payroll.Status != StatusApproved {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatusTransition
	}
	if payroll.PayslipsGeneratedAt != nil {
		return PayrollResponse{}, payrollerrors.ErrPayslipsAlreadyGenerated
	}

	cancelledAt := s.now()
	payroll.Status = StatusCancelled
	payroll.CancelledAt = &cancelledAt
	if err := qtx.Update(ctx, payroll); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollResponse{}, err
	}

	s.logger.Info("payroll cancelled",
		zap.String("company_id", companyID),
		zap.String("payroll_id", id),
	)
	return mapToResponse(*payroll), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payroll, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if payroll.Status != StatusDraft {
		return payrollerrors.ErrDeleteOnlyDraft
	}

	hasDetails, err := qtx.HasDetails(ctx, companyID, id)
	if err != nil {
		return err
	}
	if hasDetails {
		return payrollerrors.ErrPayrollHasDetails
	}

	if err := qtx.SoftDelete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PayrollListEntry, error) {
	payrolls, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	entries := make([]PayrollListEntry, 0, len(payrolls))
	for _, payroll := range payrolls {
		progress, err := s.repo.DetailProgress(ctx, companyID, payroll.ID.String())
		if err != nil {
			return nil, err
		}
		entries = append(entries, PayrollListEntry{
			ID:                 payroll.ID.String(),
			Code:               payroll.Code,
			Status:             payroll.Status,
			Year:               payroll.Year,
			Month:              payroll.Month,
			EstimatedEmployees: payroll.EstimatedEmployees,
			EstimatedTareos:    payroll.EstimatedTareos,
			EmployeesProcessed: progress.EmployeesProcessed,
			TareosProcessed:    progress.TareosProcessed,
			HasPayslips:        payroll.PayslipsGeneratedAt != nil,
			CreatedAt:          payroll.CreatedAt.Format(time.RFC3339),
		})
	}
	return entries, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayrollResponse, error) {
	payroll, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*payroll), nil
}

func (s *service) requireSigner(ctx context.Context, companyID, subsidiaryID string) error {
	signer, err := s.subsidiaries.LatestSigner(ctx, companyID, subsidiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subsidiaryerrors.ErrSignerNotFound
		}
		return err
	}
	if signer.SignatureImageURL == "" {
		return subsidiaryerrors.ErrSignerMissingSignature
	}
	return nil
}

func mapToResponse(payroll Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:                 payroll.ID.String(),
		Code:               payroll.Code,
		SubsidiaryID:       payroll.SubsidiaryID.String(),
		PeriodID:           payroll.PeriodID.String(),
		ConfigurationID:    payroll.ConfigurationID.String(),
		Status:             payroll.Status,
		Year:               payroll.Year,
		Month:              payroll.Month,
		WeekStart:          payroll.WeekStart,
		WeekEnd:            payroll.WeekEnd,
		EstimatedEmployees: payroll.EstimatedEmployees,
		EstimatedTareos:    payroll.EstimatedTareos,
		ActualEmployees:    payroll.ActualEmployees,
		ActualTareos:       payroll.ActualTareos,
		CreatedAt:          payroll.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          payroll.UpdatedAt.Format(time.RFC3339),
	}

	format := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		v := t.Format(time.RFC3339)
		return &v
	}
	resp.LaunchedAt = format(payroll.LaunchedAt)
	resp.CalculatedAt = format(payroll.CalculatedAt)
	resp.ApprovedAt = format(payroll.ApprovedAt)
	resp.CancelledAt = format(payroll.CancelledAt)
	resp.PayslipsGeneratedAt = format(payroll.PayslipsGeneratedAt)

	return resp
}

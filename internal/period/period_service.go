package period

import (
	"context"
	"database/sql"
	"errors"
	"time"

	perioderrors "agripay/internal/period/errors"
	"agripay/internal/subsidiary"
	subsidiaryerrors "agripay/internal/subsidiary/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=period_service.go -destination=mock/period_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	subsidiaries subsidiary.Repository
	logger       *zap.Logger
}

func NewService(db *sql.DB, repo Repository, subsidiaries subsidiary.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("period.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("period.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		subsidiaries: subsidiaries,
		logger:       l,
	}
}

// Create derives a new pay period for a subsidiary. Without an explicit
// start date the period starts the day after the subsidiary's latest
// one, so implicit periods form a contiguous chain.
func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreatePeriodRequest,
) (PeriodResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrInvalidCompanyID
	}

	sub, err := s.subsidiaries.FindByIDAndCompany(ctx, companyID, req.SubsidiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PeriodResponse{}, subsidiaryerrors.ErrSubsidiaryNotFound
		}
		return PeriodResponse{}, err
	}
	if sub.PaymentIntervalDays < 1 {
		return PeriodResponse{}, perioderrors.ErrInvalidInterval
	}

	var start time.Time
	if req.StartDate != "" {
		start, err = time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return PeriodResponse{}, perioderrors.ErrInvalidStartDate
		}
	} else {
		last, err := qtx.FindLastBySubsidiary(ctx, companyID, req.SubsidiaryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PeriodResponse{}, perioderrors.ErrNoPreviousPeriod
			}
			return PeriodResponse{}, err
		}
		start = last.EndDate.AddDate(0, 0, 1)
	}

	end := start.AddDate(0, 0, sub.PaymentIntervalDays-1)
	declaration := declarationDate(end, sub.DeclarationDay)

	count, err := qtx.CountEndingInMonthUpTo(
		ctx, companyID, req.SubsidiaryID,
		end.Year(), int(end.Month()), end.Format(dateLayout),
	)
	if err != nil {
		return PeriodResponse{}, err
	}

	period := &PayPeriod{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		SubsidiaryID:    sub.ID,
		Year:            end.Year(),
		Month:           int(end.Month()),
		Number:          int(count) + 1,
		StartDate:       start,
		EndDate:         end,
		DeclarationDate: declaration,
	}
	if err := qtx.Create(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	s.logger.Info("pay period created",
		zap.String("company_id", companyID),
		zap.String("subsidiary_id", req.SubsidiaryID),
		zap.String("start", period.StartDate.Format(dateLayout)),
		zap.String("end", period.EndDate.Format(dateLayout)),
		zap.Int("number", period.Number),
	)

	return mapToResponse(*period), nil
}

// declarationDate applies the subsidiary's declaration day-of-month to
// the month the period ends in, rolling forward a month when the result
// would precede the period end.
func declarationDate(end time.Time, declarationDay int) time.Time {
	declaration := time.Date(end.Year(), end.Month(), declarationDay, 0, 0, 0, 0, end.Location())
	if declaration.Before(end) {
		declaration = declaration.AddDate(0, 1, 0)
	}
	return declaration
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]PeriodResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, mapToResponse(row))
	}
	return responses, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PeriodResponse{}, perioderrors.ErrPeriodNotFound
		}
		return PeriodResponse{}, err
	}
	return mapToResponse(*period), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return perioderrors.ErrPeriodNotFound
		}
		return err
	}

	// Referential check before any mutation.
	refs, err := qtx.CountPayrollReferences(ctx, companyID, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return perioderrors.ErrPeriodInUse
	}

	if err := qtx.SoftDelete(ctx, companyID, id); err != nil {
		return err
	}

	return tx.Commit()
}

func mapToResponse(period PayPeriod) PeriodResponse {
	return PeriodResponse{
		ID:              period.ID.String(),
		SubsidiaryID:    period.SubsidiaryID.String(),
		Year:            period.Year,
		Month:           period.Month,
		Number:          period.Number,
		StartDate:       period.StartDate.Format(dateLayout),
		EndDate:         period.EndDate.Format(dateLayout),
		DeclarationDate: period.DeclarationDate.Format(dateLayout),
	}
}

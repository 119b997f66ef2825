package configuration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	configurationerrors "agripay/internal/configuration/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=configuration_service.go -destination=mock/configuration_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateConfigurationRequest) (ConfigurationResponse, error)
	UpdateActive(ctx context.Context, companyID string, req UpdateConfigurationRequest) (ConfigurationResponse, error)
	DeleteActive(ctx context.Context, companyID string) error
	GetActive(ctx context.Context, companyID string) (ConfigurationResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ConfigurationResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	assigner Assigner
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db *sql.DB, repo Repository, assigner Assigner, logger ...*zap.Logger) Service {
	l := zap.L().Named("configuration.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("configuration.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		assigner: assigner,
		logger:   l,
		now:      time.Now,
	}
}

func generateCode(at time.Time) string {
	return fmt.Sprintf("CFG-%s", at.UTC().Format("20060102-150405"))
}

// Create replaces the active configuration: the previous active version
// (if any) is soft-deleted and a new version with fresh value snapshots
// becomes the single non-deleted one.
func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateConfigurationRequest,
) (ConfigurationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ConfigurationResponse{}, configurationerrors.ErrInvalidCompanyID
	}
	if len(req.ConceptCodes) == 0 {
		return ConfigurationResponse{}, configurationerrors.ErrNoConcepts
	}

	previous, err := qtx.FindActive(ctx, companyID)
	switch {
	case err == nil:
		if err := qtx.SoftDelete(ctx, companyID, previous.ID.String()); err != nil {
			return ConfigurationResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First configuration for the company.
	default:
		return ConfigurationResponse{}, err
	}

	config := &MasterConfiguration{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Code:      generateCode(s.now()),
	}
	if err := qtx.Create(ctx, config); err != nil {
		return ConfigurationResponse{}, err
	}

	assignments, err := s.assigner.Assign(ctx, companyID, Target{ConfigurationID: &config.ID}, req.ConceptCodes)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	config.Assignments = assignments

	if err := tx.Commit(); err != nil {
		return ConfigurationResponse{}, err
	}

	s.logger.Info("master configuration created",
		zap.String("company_id", companyID),
		zap.String("code", config.Code),
		zap.Int("concepts", len(assignments)),
	)

	return mapToResponse(*config), nil
}

// UpdateActive mutates the active version in place only while no payroll
// references it. Once referenced, the version is frozen and the update
// produces a brand-new version instead (copy-on-write), so historical
// payrolls never observe a silent change to their configuration.
func (s *service) UpdateActive(
	ctx context.Context,
	companyID string,
	req UpdateConfigurationRequest,
) (ConfigurationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if len(req.ConceptCodes) == 0 {
		return ConfigurationResponse{}, configurationerrors.ErrNoConcepts
	}

	active, err := qtx.FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfigurationResponse{}, configurationerrors.ErrNoActiveConfiguration
		}
		return ConfigurationResponse{}, err
	}

	refs, err := qtx.CountPayrollReferences(ctx, companyID, active.ID.String())
	if err != nil {
		return ConfigurationResponse{}, err
	}

	if refs > 0 {
		if err := qtx.SoftDelete(ctx, companyID, active.ID.String()); err != nil {
			return ConfigurationResponse{}, err
		}

		next := &MasterConfiguration{
			ID:        uuid.New(),
			CompanyID: active.CompanyID,
			Code:      generateCode(s.now()),
		}
		if err := qtx.Create(ctx, next); err != nil {
			return ConfigurationResponse{}, err
		}
		assignments, err := s.assigner.Assign(ctx, companyID, Target{ConfigurationID: &next.ID}, req.ConceptCodes)
		if err != nil {
			return ConfigurationResponse{}, err
		}
		next.Assignments = assignments

		if err := tx.Commit(); err != nil {
			return ConfigurationResponse{}, err
		}

		s.logger.Info("master configuration versioned (copy-on-write)",
			zap.String("company_id", companyID),
			zap.String("previous_code", active.Code),
			zap.String("code", next.Code),
			zap.Int64("payroll_references", refs),
		)
		return mapToResponse(*next), nil
	}

	// Unreferenced: replace the assignments on the same version.
	if err := qtx.SoftDeleteAssignmentsForConfiguration(ctx, companyID, active.ID.String()); err != nil {
		return ConfigurationResponse{}, err
	}
	active.Assignments = nil

	assignments, err := s.assigner.Assign(ctx, companyID, Target{ConfigurationID: &active.ID}, req.ConceptCodes)
	if err != nil {
		return ConfigurationResponse{}, err
	}
	active.Assignments = assignments

	if err := tx.Commit(); err != nil {
		return ConfigurationResponse{}, err
	}

	s.logger.Info("master configuration assignments replaced",
		zap.String("company_id", companyID),
		zap.String("code", active.Code),
		zap.Int("concepts", len(assignments)),
	)
	return mapToResponse(*active), nil
}

func (s *service) DeleteActive(ctx context.Context, companyID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	active, err := qtx.FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return configurationerrors.ErrNoActiveConfiguration
		}
		return err
	}

	// Referential check before any mutation.
	refs, err := qtx.CountPayrollReferences(ctx, companyID, active.ID.String())
	if err != nil {
		return err
	}
	if refs > 0 {
		return configurationerrors.ErrConfigurationReferenced
	}

	if err := qtx.SoftDeleteAssignmentsForConfiguration(ctx, companyID, active.ID.String()); err != nil {
		return err
	}
	if err := qtx.SoftDelete(ctx, companyID, active.ID.String()); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) GetActive(ctx context.Context, companyID string) (ConfigurationResponse, error) {
	active, err := s.repo.FindActive(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfigurationResponse{}, configurationerrors.ErrNoActiveConfiguration
		}
		return ConfigurationResponse{}, err
	}
	return mapToResponse(*active), nil
}

// GetByID reads historical versions too: a payroll's configuration stays
// retrievable after it was superseded.
func (s *service) GetByID(ctx context.Context, companyID, id string) (ConfigurationResponse, error) {
	config, err := s.repo.FindByIDUnscoped(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfigurationResponse{}, configurationerrors.ErrConfigurationNotFound
		}
		return ConfigurationResponse{}, err
	}
	return mapToResponse(*config), nil
}

func mapToResponse(config MasterConfiguration) ConfigurationResponse {
	resp := ConfigurationResponse{
		ID:          config.ID.String(),
		Code:        config.Code,
		CreatedAt:   config.CreatedAt.Format(time.RFC3339),
		Assignments: make([]AssignmentResponse, 0, len(config.Assignments)),
	}
	for _, assignment := range config.Assignments {
		resp.Assignments = append(resp.Assignments, AssignmentResponse{
			ID:          assignment.ID.String(),
			ConceptCode: assignment.ConceptCode,
			Category:    assignment.Category,
			Value:       assignment.Value.String(),
		})
	}
	return resp
}

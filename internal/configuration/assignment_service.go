package configuration

import (
	"context"
	"errors"

	"agripay/internal/concept"
	concepterrors "agripay/internal/concept/errors"
	configurationerrors "agripay/internal/configuration/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target identifies what an assignment hangs off: exactly one of the two
// must be set.
type Target struct {
	ConfigurationID *uuid.UUID
	PayrollID       *uuid.UUID
}

func (t Target) valid() bool {
	return (t.ConfigurationID != nil) != (t.PayrollID != nil)
}

// Assigner copies concept definitions onto a target with a frozen value
// snapshot. Reassign is the remove/update/insert diff every concept
// assignment surface in the system goes through.
//
//go:generate mockgen -source=assignment_service.go -destination=mock/assigner_mock.go -package=mock
type Assigner interface {
	Assign(ctx context.Context, companyID string, target Target, codes []string) ([]ConceptAssignment, error)
	Reassign(ctx context.Context, companyID string, target Target, codes []string) ([]ConceptAssignment, error)
}

type assigner struct {
	repo     Repository
	concepts concept.Repository
}

func NewAssigner(repo Repository, concepts concept.Repository) Assigner {
	return &assigner{repo: repo, concepts: concepts}
}

func (a *assigner) Assign(
	ctx context.Context,
	companyID string,
	target Target,
	codes []string,
) ([]ConceptAssignment, error) {
	if !target.valid() {
		return nil, configurationerrors.ErrAssignmentTarget
	}

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, configurationerrors.ErrInvalidCompanyID
	}

	assignments := make([]ConceptAssignment, 0, len(codes))
	for _, code := range codes {
		resolved, err := a.concepts.FindByCode(ctx, companyID, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, concepterrors.ErrConceptNotFound
			}
			return nil, err
		}

		assignment := ConceptAssignment{
			ID:              uuid.New(),
			CompanyID:       companyUUID,
			ConfigurationID: target.ConfigurationID,
			PayrollID:       target.PayrollID,
			ConceptID:       resolved.ID,
			ConceptCode:     resolved.Code,
			Category:        resolved.Category,
			Value:           resolved.CurrentValue,
		}
		if err := a.repo.CreateAssignment(ctx, &assignment); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

func (a *assigner) Reassign(
	ctx context.Context,
	companyID string,
	target Target,
	codes []string,
) ([]ConceptAssignment, error) {
	if !target.valid() {
		return nil, configurationerrors.ErrAssignmentTarget
	}

	existing, err := a.findExisting(ctx, companyID, target)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(codes))
	for _, code := range codes {
		requested[code] = true
	}

	existingByCode := make(map[string]*ConceptAssignment, len(existing))
	for i := range existing {
		existingByCode[existing[i].ConceptCode] = &existing[i]
	}

	// Remove assignments no longer requested.
	for i := range existing {
		if !requested[existing[i].ConceptCode] {
			if err := a.repo.SoftDeleteAssignment(ctx, companyID, existing[i].ID.String()); err != nil {
				return nil, err
			}
		}
	}

	result := make([]ConceptAssignment, 0, len(codes))
	for _, code := range codes {
		resolved, err := a.concepts.FindByCode(ctx, companyID, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, concepterrors.ErrConceptNotFound
			}
			return nil, err
		}

		current, ok := existingByCode[code]
		if !ok {
			// Newly requested: insert with a fresh snapshot.
			created, err := a.Assign(ctx, companyID, target, []string{code})
			if err != nil {
				return nil, err
			}
			result = append(result, created...)
			continue
		}

		// Kept: re-snapshot only when the concept's value moved.
		if !current.Value.Equal(resolved.CurrentValue) {
			if err := a.repo.UpdateAssignmentValue(ctx, current.ID.String(), resolved.CurrentValue); err != nil {
				return nil, err
			}
			current.Value = resolved.CurrentValue
		}
		result = append(result, *current)
	}

	return result, nil
}

func (a *assigner) findExisting(ctx context.Context, companyID string, target Target) ([]ConceptAssignment, error) {
	if target.ConfigurationID != nil {
		return a.repo.FindAssignmentsForConfiguration(ctx, companyID, target.ConfigurationID.String())
	}
	return a.repo.FindAssignmentsForPayroll(ctx, companyID, target.PayrollID.String())
}

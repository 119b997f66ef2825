package concept

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	concepterrors "agripay/internal/concept/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

//go:generate mockgen -source=concept_service.go -destination=mock/concept_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateConceptRequest) (ConceptResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ConceptResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ConceptResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateConceptRequest) (ConceptResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateConceptRequest,
) (ConceptResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConceptResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ConceptResponse{}, concepterrors.ErrInvalidCompanyID
	}

	category := strings.ToUpper(strings.TrimSpace(req.Category))
	if !ValidCategory(category) {
		return ConceptResponse{}, concepterrors.ErrInvalidCategory
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return ConceptResponse{}, concepterrors.ErrInvalidValue
	}

	tags, err := marshalTags(req.Tags)
	if err != nil {
		return ConceptResponse{}, err
	}

	priority := req.Priority
	if priority == 0 {
		priority = 100
	}

	concept := &Concept{
		ID:           uuid.New(),
		CompanyID:    companyUUID,
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:         req.Name,
		Category:     category,
		Tags:         tags,
		CurrentValue: value,
		Priority:     priority,
	}

	if err := qtx.Create(ctx, concept); err != nil {
		return ConceptResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return ConceptResponse{}, err
	}

	return mapToResponse(*concept), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ConceptResponse, error) {
	concepts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(concepts), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ConceptResponse, error) {
	concept, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ConceptResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*concept), nil
}

// Update mutates the concept's current value in place. Existing
// assignments keep their frozen snapshots; only future assignments see
// the new value.
func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateConceptRequest,
) (ConceptResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConceptResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	concept, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ConceptResponse{}, mapRepositoryError(err)
	}

	category := strings.ToUpper(strings.TrimSpace(req.Category))
	if !ValidCategory(category) {
		return ConceptResponse{}, concepterrors.ErrInvalidCategory
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return ConceptResponse{}, concepterrors.ErrInvalidValue
	}

	tags, err := marshalTags(req.Tags)
	if err != nil {
		return ConceptResponse{}, err
	}

	concept.Name = req.Name
	concept.Category = category
	concept.Tags = tags
	concept.CurrentValue = value
	if req.Priority > 0 {
		concept.Priority = req.Priority
	}

	if err := qtx.Update(ctx, concept); err != nil {
		return ConceptResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return ConceptResponse{}, err
	}

	return mapToResponse(*concept), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	concept, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	// Referential check before any mutation.
	refs, err := qtx.CountAssignments(ctx, companyID, concept.ID.String())
	if err != nil {
		return err
	}
	if refs > 0 {
		return concepterrors.ErrConceptReferenced
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	return tx.Commit()
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if tag != "" {
			normalized = append(normalized, tag)
		}
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ParseTags decodes the stored tag set; a damaged blob degrades to an
// empty set rather than failing a read path.
func ParseTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

func mapToResponse(concept Concept) ConceptResponse {
	return ConceptResponse{
		ID:       concept.ID.String(),
		Code:     concept.Code,
		Name:     concept.Name,
		Category: concept.Category,
		Tags:     ParseTags(concept.Tags),
		Value:    concept.CurrentValue.String(),
		Priority: concept.Priority,
	}
}

func mapToListResponse(concepts []Concept) []ConceptResponse {
	resp := make([]ConceptResponse, len(concepts))
	for i, concept := range concepts {
		resp[i] = mapToResponse(concept)
	}
	return resp
}

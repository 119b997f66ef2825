package subsidiary

import (
	"context"
	"errors"

	subsidiaryerrors "agripay/internal/subsidiary/errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=subsidiary_service.go -destination=mock/subsidiary_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]SubsidiaryResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SubsidiaryResponse, error)
	// ResolveSigner returns the signer that would sign payslips for the
	// subsidiary, requiring a signature image to be present.
	ResolveSigner(ctx context.Context, companyID, subsidiaryID string) (*Signer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]SubsidiaryResponse, error) {
	subs, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(subs), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (SubsidiaryResponse, error) {
	sub, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubsidiaryResponse{}, subsidiaryerrors.ErrSubsidiaryNotFound
		}
		return SubsidiaryResponse{}, err
	}
	return mapToResponse(*sub), nil
}

func (s *service) ResolveSigner(ctx context.Context, companyID, subsidiaryID string) (*Signer, error) {
	signer, err := s.repo.LatestSigner(ctx, companyID, subsidiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subsidiaryerrors.ErrSignerNotFound
		}
		return nil, err
	}
	if signer.SignatureImageURL == "" {
		return nil, subsidiaryerrors.ErrSignerMissingSignature
	}
	return signer, nil
}

func mapToResponse(sub Subsidiary) SubsidiaryResponse {
	return SubsidiaryResponse{
		ID:                  sub.ID.String(),
		Code:                sub.Code,
		Name:                sub.Name,
		PaymentIntervalDays: sub.PaymentIntervalDays,
		DeclarationDay:      sub.DeclarationDay,
	}
}

func mapToListResponse(subs []Subsidiary) []SubsidiaryResponse {
	resp := make([]SubsidiaryResponse, len(subs))
	for i, sub := range subs {
		resp[i] = mapToResponse(sub)
	}
	return resp
}

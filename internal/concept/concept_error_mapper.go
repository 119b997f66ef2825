package concept

import (
	"errors"
	"strings"

	concepterrors "agripay/internal/concept/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return concepterrors.ErrConceptNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "idx_concept_company_code" {
			return concepterrors.ErrConceptCodeExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "idx_concept_company_code") {
		return concepterrors.ErrConceptCodeExists
	}

	return err
}

package concepterrors

import (
	"net/http"

	"agripay/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"invalid concept category",
		http.StatusBadRequest,
	)
	ErrInvalidValue = apperror.New(
		apperror.CodeInvalidInput,
		"invalid concept value",
		http.StatusBadRequest,
	)
	ErrConceptNotFound = apperror.New(
		apperror.CodeNotFound,
		"concept not found",
		http.StatusNotFound,
	)
	ErrConceptCodeExists = apperror.New(
		apperror.CodeConflict,
		"a concept with this code already exists",
		http.StatusConflict,
	)
	ErrConceptReferenced = apperror.New(
		apperror.CodeReferenced,
		"concept is referenced by a configuration or payroll and cannot be deleted",
		http.StatusConflict,
	)
)

package configurationerrors

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
	ErrNoConcepts = apperror.New(
		apperror.CodeInvalidInput,
		"a configuration requires at least one concept",
		http.StatusBadRequest,
	)
	ErrNoActiveConfiguration = apperror.New(
		apperror.CodeNotFound,
		"no active master configuration exists",
		http.StatusNotFound,
	)
	ErrConfigurationNotFound = apperror.New(
		apperror.CodeNotFound,
		"master configuration not found",
		http.StatusNotFound,
	)
	ErrConfigurationReferenced = apperror.New(
		apperror.CodeReferenced,
		"master configuration is referenced by a payroll and cannot be deleted",
		http.StatusConflict,
	)
	ErrAssignmentTarget = apperror.New(
		apperror.CodeInvalidInput,
		"an assignment target must be a configuration or a payroll",
		http.StatusBadRequest,
	)
)

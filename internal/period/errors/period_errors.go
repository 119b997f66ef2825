package perioderrors

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
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay period not found",
		http.StatusNotFound,
	)
	ErrNoPreviousPeriod = apperror.New(
		apperror.CodeInvalidState,
		"no previous pay period exists for this subsidiary; an explicit start date is required",
		http.StatusUnprocessableEntity,
	)
	ErrPeriodInUse = apperror.New(
		apperror.CodeReferenced,
		"pay period is referenced by a payroll and cannot be deleted",
		http.StatusConflict,
	)
	ErrInvalidStartDate = apperror.New(
		apperror.CodeInvalidInput,
		"start date must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidInterval = apperror.New(
		apperror.CodeInvalidState,
		"subsidiary payment interval must be at least one day",
		http.StatusUnprocessableEntity,
	)
)

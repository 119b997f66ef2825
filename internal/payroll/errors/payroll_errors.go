package payrollerrors

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
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrPayrollCodeExists = apperror.New(
		apperror.CodeConflict,
		"a payroll with this code already exists",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll status transition",
		http.StatusBadRequest,
	)
	ErrPayslipsAlreadyGenerated = apperror.New(
		apperror.CodeInvalidState,
		"payslips were already generated for this payroll",
		http.StatusBadRequest,
	)
	ErrDeleteOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll can only be deleted while status is DRAFT",
		http.StatusBadRequest,
	)
	ErrPayrollHasDetails = apperror.New(
		apperror.CodeReferenced,
		"payroll already has computed detail rows and cannot be deleted",
		http.StatusConflict,
	)
)

package subsidiaryerrors

import (
	"net/http"

	"agripay/internal/shared/apperror"
)

var (
	ErrSubsidiaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"subsidiary not found",
		http.StatusNotFound,
	)
	ErrSignerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"subsidiary has no responsible signer configured",
		http.StatusBadRequest,
	)
	ErrSignerMissingSignature = apperror.New(
		apperror.CodeInvalidInput,
		"responsible signer has no signature image",
		http.StatusBadRequest,
	)
)

package calendarerrors

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
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidEventType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid calendar event type",
		http.StatusBadRequest,
	)
	ErrEventNotFound = apperror.New(
		apperror.CodeNotFound,
		"calendar event not found",
		http.StatusNotFound,
	)
)

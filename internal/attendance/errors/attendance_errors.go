package attendanceerrors

import (
	"net/http"

	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/apperror"
)

var (
	ErrNoCheckInRecord = apperror.New(
		apperror.CodeNotFound,
		"No check-in record found for this child today",
		http.StatusNotFound,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"Child is already checked in for today",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeConflict,
		"Child has already been checked out today",
		http.StatusConflict,
	)
	ErrInvalidChildID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid child ID",
		http.StatusBadRequest,
	)
	ErrInvalidTenantID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid tenant ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)

package childerrors

import (
	"net/http"

	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/apperror"
)

var (
	ErrChildNotFound = apperror.New(
		apperror.CodeNotFound,
		"Child not found",
		http.StatusNotFound,
	)
	ErrGuardianNotFound = apperror.New(
		apperror.CodeNotFound,
		"Guardian not found",
		http.StatusNotFound,
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
	ErrInvalidClassID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid class ID",
		http.StatusBadRequest,
	)
	ErrInvalidBirthDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid birth date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)

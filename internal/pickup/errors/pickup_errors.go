package pickuperrors

import (
	"fmt"
	"net/http"

	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/apperror"
)

var (
	ErrNotAuthorizedPickup = apperror.New(
		apperror.CodeForbidden,
		"This person is not on the child's authorized pickup list",
		http.StatusForbidden,
	)
	ErrNoPhoneOnFile = apperror.New(
		apperror.CodeInvalidState,
		"Authorized guardian has no phone number on file, secure checkout is not possible",
		http.StatusUnprocessableEntity,
	)
	ErrWrongClassScope = apperror.New(
		apperror.CodeForbidden,
		"Child is not assigned to your class",
		http.StatusForbidden,
	)
	ErrVerificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Verification request not found",
		http.StatusNotFound,
	)
	ErrAlreadyVerified = apperror.New(
		apperror.CodeInvalidState,
		"This checkout has already been verified",
		http.StatusConflict,
	)
	ErrCodeExpired = apperror.New(
		apperror.CodeInvalidState,
		"Verification code has expired, request a new one",
		http.StatusGone,
	)
	ErrMaxAttemptsExceeded = apperror.New(
		apperror.CodeInvalidState,
		"Maximum verification attempts exceeded. Possible unauthorized pickup attempt, please contact an administrator",
		http.StatusForbidden,
	)
	ErrVerificationBlocked = apperror.New(
		apperror.CodeInvalidState,
		"Verification is blocked after too many failed attempts, please contact an administrator",
		http.StatusForbidden,
	)
	ErrDeliveryFailure = apperror.New(
		apperror.CodeServiceUnavailable,
		"Could not deliver the verification code, please try again",
		http.StatusBadGateway,
	)
	ErrVerificationConflict = apperror.New(
		apperror.CodeConflict,
		"Another verification attempt is in progress, please retry",
		http.StatusConflict,
	)
	ErrInvalidTenantID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid tenant ID",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid actor ID",
		http.StatusBadRequest,
	)
	ErrInvalidChildID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid child ID",
		http.StatusBadRequest,
	)
)

// CodeMismatch reports a wrong code together with how many attempts remain.
func CodeMismatch(remaining int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("Incorrect verification code, %d attempt(s) remaining", remaining),
		http.StatusBadRequest,
	)
}

package pickup

import (
	"time"

	pickuperrors "github.com/Justoo1/daycare-management-system-sub000/internal/pickup/errors"
)

// EvaluateCode decides the next state for a code submission without touching
// storage. It returns a copy of the record with status/attempt changes
// applied and the error to report; a nil error means VERIFIED. The caller
// persists the returned value behind an attempts guard so two concurrent
// submissions cannot both count as the same attempt.
//
// Ordering contract: the submitted code is compared BEFORE the attempt
// counter moves, so a correct code on the final allowed attempt still
// succeeds.
func EvaluateCode(v PendingVerification, code string, now time.Time) (PendingVerification, error) {
	switch v.Status {
	case StatusVerified:
		return v, pickuperrors.ErrAlreadyVerified
	case StatusExpired:
		return v, pickuperrors.ErrCodeExpired
	case StatusFailed:
		return v, pickuperrors.ErrVerificationBlocked
	}

	// The stored status alone is not authoritative once the expiry timestamp
	// has passed; expiry is evaluated lazily on every access.
	if now.After(v.ExpiresAt) {
		v.Status = StatusExpired
		return v, pickuperrors.ErrCodeExpired
	}

	if v.Attempts >= v.MaxAttempts {
		v.Status = StatusFailed
		return v, pickuperrors.ErrMaxAttemptsExceeded
	}

	if code == v.Code {
		v.Status = StatusVerified
		v.VerifiedAt = &now
		return v, nil
	}

	v.Attempts++
	if v.Attempts >= v.MaxAttempts {
		v.Status = StatusFailed
		return v, pickuperrors.ErrMaxAttemptsExceeded
	}
	return v, pickuperrors.CodeMismatch(v.MaxAttempts - v.Attempts)
}

// TerminalStatusError maps a non-PENDING status to its caller-facing error.
func TerminalStatusError(status string) error {
	switch status {
	case StatusVerified:
		return pickuperrors.ErrAlreadyVerified
	case StatusExpired:
		return pickuperrors.ErrCodeExpired
	case StatusFailed:
		return pickuperrors.ErrVerificationBlocked
	default:
		return nil
	}
}

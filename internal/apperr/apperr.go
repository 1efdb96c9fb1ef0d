// Package apperr defines the error kinds returned by the core services.
// Every failure carries exactly one kind so callers (and the HTTP layer)
// can distinguish authorization, state, validation, policy-limit and
// transfer failures without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized — caller is not a recognized party/arbitrator for the record.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState — operation is not valid for the record's current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation — malformed parameters (bad split, out-of-sequence index, date ordering).
	ErrValidation = errors.New("validation failed")
	// ErrPolicyLimit — a configured limit was exceeded (overdue count, negotiation rounds).
	ErrPolicyLimit = errors.New("policy limit exceeded")
	// ErrTransfer — the external ledger transfer failed; no state was mutated.
	ErrTransfer = errors.New("transfer failed")
	// ErrNotFound — the targeted record does not exist.
	ErrNotFound = errors.New("not found")
)

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func PolicyLimit(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPolicyLimit, fmt.Sprintf(format, args...))
}

func Transfer(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransfer, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

package dashboard

import (
	"errors"
	"fmt"
)

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrEmptyRoster      = errors.New("roster is empty")
	ErrDuplicatePatient = errors.New("duplicate patient id in roster")

	// ErrPlacementCancelled marks an operator cancel (blank label). Callers
	// treat it as a no-op, never as a failure.
	ErrPlacementCancelled = errors.New("placement cancelled")

	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidView     = errors.New("invalid view")
	ErrInvalidScan     = errors.New("invalid scan")
	ErrInvalidBounds   = errors.New("invalid mesh bounds")
	ErrPickNotFound    = errors.New("pick not found or expired")
)

// ValidationError wraps input problems so the HTTP layer can answer 400.
type ValidationError struct {
	Field  string
	reason error
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.reason.Error())
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func invalid(field string, reason error) error {
	return ValidationError{Field: field, reason: reason}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

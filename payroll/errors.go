package payroll

import (
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProfileNotFound is returned when a referenced employee has no profile.
	ErrProfileNotFound = errors.New("employee profile not found")

	// ErrInvalidEmploymentType is returned for an unrecognized employment type.
	ErrInvalidEmploymentType = errors.New("invalid employment type")

	// ErrInvalidAccrualMethod is returned for an unrecognized accrual method.
	ErrInvalidAccrualMethod = errors.New("invalid accrual method")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// MissingProfileError identifies an active employee excluded from a run
// because their profile is incomplete or absent. Surfaced as an explicit
// condition, never swallowed.
type MissingProfileError struct {
	EmployeeID engine.EmployeeID
}

func (e *MissingProfileError) Error() string {
	return fmt.Sprintf("employee %s has no profile and was excluded from the run", e.EmployeeID)
}

func (e *MissingProfileError) Unwrap() error { return ErrProfileNotFound }

// InvalidEmploymentTypeError reports the rejected type string.
type InvalidEmploymentTypeError struct {
	Type string
}

func (e *InvalidEmploymentTypeError) Error() string {
	return fmt.Sprintf("invalid employment type %q (want hourly, salaried, or contractor)", e.Type)
}

func (e *InvalidEmploymentTypeError) Unwrap() error { return ErrInvalidEmploymentType }

// InvalidAccrualMethodError reports the rejected method string.
type InvalidAccrualMethodError struct {
	Method string
}

func (e *InvalidAccrualMethodError) Error() string {
	return fmt.Sprintf("invalid accrual method %q (want per-hour, per-pay-period, or lump-sum)", e.Method)
}

func (e *InvalidAccrualMethodError) Unwrap() error { return ErrInvalidAccrualMethod }

/*
errors.go - Centralized error types for the engine core

PURPOSE:
  Sentinel and structured errors shared by the core packages. Domain
  packages (payroll, approval) define their own errors and wrap these
  where appropriate.

USAGE:
  if errors.Is(err, engine.ErrInvalidPeriod) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidViewMode is returned for an unrecognized view mode string.
	ErrInvalidViewMode = errors.New("invalid view mode")

	// ErrInvalidNavOp is returned for an unrecognized navigation operation.
	ErrInvalidNavOp = errors.New("invalid navigation operation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidViewModeError reports the rejected mode string.
type InvalidViewModeError struct {
	Mode string
}

func (e *InvalidViewModeError) Error() string {
	return fmt.Sprintf("invalid view mode %q (want week, biweekly, or month)", e.Mode)
}

func (e *InvalidViewModeError) Unwrap() error { return ErrInvalidViewMode }

// InvalidNavOpError reports the rejected navigation operation.
type InvalidNavOpError struct {
	Op string
}

func (e *InvalidNavOpError) Error() string {
	return fmt.Sprintf("invalid navigation operation %q", e.Op)
}

func (e *InvalidNavOpError) Unwrap() error { return ErrInvalidNavOp }

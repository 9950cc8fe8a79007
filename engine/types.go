/*
Package engine provides the core types and time math for the payroll engine.

PURPOSE:
  This package contains the domain-agnostic foundation: typed identifiers,
  decimal helpers, date arithmetic, and pay-period resolution. Everything
  above it (timesheet, payroll, approval) is expressed in these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeID/ClientID/TaskID: Type-safe identifiers
  - Decimal helpers: construction shortcuts for hours and money values

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors in
     anything that touches pay or balances
  2. Type Safety: Strong typing for IDs prevents mixing employee/client/task
  3. Purity: Nothing in this package holds state or performs I/O

SEE ALSO:
  - period.go: ViewMode resolution and navigation
  - time.go: Date arithmetic and working-day counting
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ClientID string
type TaskID string

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// Dec builds a decimal from a float. Use for configuration values and tests;
// persisted values should round-trip through strings.
func Dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// DecInt builds a decimal from an integer.
func DecInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// ParseDecimalOrZero parses a decimal string, returning zero on failure.
func ParseDecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClampNonNegative returns d, floored at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

/*
store.go - Profile persistence interface

PURPOSE:
  Defines the boundary between the engine and the employee profile store.
  Calculation only reads profiles. The single mutating operation is
  CommitBalances, called exactly once per approved run.

ATOMIC BATCH CONTRACT:
  CommitBalances applies the whole batch or none of it. A partial failure
  must never leave some employees updated and others not - two managers
  approving overlapping subsets of the same period would otherwise race
  into lost updates. Implementations serialize commits (SQLite uses a
  real transaction, the memory store a mutex + validate-then-apply pass).

IMPLEMENTATIONS:
  - store/sqlite: production store, WAL mode
  - store/memory: tests and dev server

SEE ALSO:
  - approval/run.go: the only caller of CommitBalances
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileStore persists employee profiles.
type ProfileStore interface {
	// Profile returns one profile. ErrProfileNotFound if absent.
	Profile(ctx context.Context, id engine.EmployeeID) (*EmployeeProfile, error)

	// ListProfiles returns all profiles, ordered by name.
	ListProfiles(ctx context.Context) ([]*EmployeeProfile, error)

	// SaveProfile creates or replaces a profile.
	SaveProfile(ctx context.Context, p *EmployeeProfile) error

	// CommitBalances atomically applies an approval batch: for every
	// update, set the sick leave balance to NewBalance and reset the
	// working SickLeaveUsed to zero. All or nothing.
	CommitBalances(ctx context.Context, batch []BalanceUpdate) error
}

// BalanceUpdate is one employee's share of an approval commit. NewBalance
// is absolute (already clamped at zero by the workflow).
type BalanceUpdate struct {
	EmployeeID engine.EmployeeID

	// Figures committed, kept for the audit trail.
	SickLeaveUsed    decimal.Decimal
	SickLeaveAccrued decimal.Decimal
	OldBalance       decimal.Decimal
	NewBalance       decimal.Decimal
}

// PolicyStore persists the firm-wide sick leave policy.
type PolicyStore interface {
	// SickLeavePolicy returns the current firm policy.
	SickLeavePolicy(ctx context.Context) (SickLeavePolicy, error)

	// SaveSickLeavePolicy replaces the firm policy.
	SaveSickLeavePolicy(ctx context.Context, p SickLeavePolicy) error
}

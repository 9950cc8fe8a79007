package approval

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// AUDIT LOG - Append-only approval trail
// =============================================================================

// AuditEntry records one employee's share of an approval commit. Entries
// are immutable: the log is append-only, and corrections happen through
// later approvals, never edits.
type AuditEntry struct {
	ID         string
	RunID      string
	EmployeeID engine.EmployeeID

	PeriodStart engine.Date
	PeriodEnd   engine.Date

	SickLeaveUsed    decimal.Decimal
	SickLeaveAccrued decimal.Decimal
	OldBalance       decimal.Decimal
	NewBalance       decimal.Decimal

	Actor      string
	ApprovedAt time.Time
}

// AuditLog persists approval entries. Append-only: no update, no delete.
type AuditLog interface {
	// AppendApprovals records an approval batch.
	AppendApprovals(ctx context.Context, entries []AuditEntry) error

	// ApprovalsForRun returns the entries for one run, in append order.
	ApprovalsForRun(ctx context.Context, runID string) ([]AuditEntry, error)
}

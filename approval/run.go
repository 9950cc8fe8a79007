/*
Package approval drives the payroll approval workflow.

PURPOSE:
  A Run is one payroll session: a pay period, an employee selection, the
  per-run sick-hour overrides, and a three-state approval machine.

STATE MACHINE:
  Draft ──approve──▶ Approved ──lock──▶ Locked
                        ▲                 │
                        └─────unlock──────┘

  There is no edge back to Draft. Approve is the ONLY operation in the
  engine with a side effect: it commits sick leave balances to the
  profile store, exactly once, as one atomic batch.

OVERRIDES:
  Sick-hour edits are an explicit per-run map keyed by employee ID, owned
  by the Run. They merge with profile defaults through a pure effective-
  value lookup and never touch the profile until Approve commits. Once a
  run leaves Draft the overrides are frozen: edits after approval are
  rejected outright rather than silently diverging from the committed
  balances.

CONCURRENCY:
  Every computation is pure and freely recomputable. Approve is a single
  critical section: the Run's mutex serializes it against concurrent
  approval of the same session, and the store's atomic batch contract
  protects against overlapping approvals of the same period.

SEE ALSO:
  - payroll/store.go: the CommitBalances contract
  - audit.go: the append-only approval trail
*/
package approval

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// STATE
// =============================================================================

// State is the approval state of one rendered payroll run.
type State string

const (
	StateDraft    State = "draft"
	StateApproved State = "approved"
	StateLocked   State = "locked"
)

// =============================================================================
// RESULT - One computed payroll run
// =============================================================================

// Result is the output of Compute: per-employee summaries, the totals
// over the selection, and everything that went wrong along the way.
type Result struct {
	Summaries []payroll.Summary
	Totals    payroll.Totals

	// Employees with logged hours but no profile. An explicit condition,
	// not silent data loss.
	Skipped []engine.EmployeeID

	// Entry-level resolution diagnostics from aggregation.
	Diagnostics []timesheet.Diagnostic
}

// Summary returns the computed summary for one employee, if present.
func (r *Result) Summary(id engine.EmployeeID) (payroll.Summary, bool) {
	for _, s := range r.Summaries {
		if s.EmployeeID == id {
			return s, true
		}
	}
	return payroll.Summary{}, false
}

// =============================================================================
// RUN - One payroll session
// =============================================================================

// Run is a single payroll approval session.
type Run struct {
	ID     string
	Mode   engine.ViewMode
	Period engine.Period
	Policy payroll.SickLeavePolicy

	mu        sync.Mutex
	state     State
	overrides map[engine.EmployeeID]decimal.Decimal
	last      *Result
}

// NewRun opens a Draft session for the period.
func NewRun(mode engine.ViewMode, period engine.Period, policy payroll.SickLeavePolicy) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Period:    period,
		Policy:    policy,
		state:     StateDraft,
		overrides: make(map[engine.EmployeeID]decimal.Decimal),
	}
}

// State returns the current approval state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// =============================================================================
// OVERRIDES - Per-run sick-hour edits
// =============================================================================

// SetSickOverride records a sick-hours edit for this run. Rejected once
// the run has left Draft.
func (r *Run) SetSickOverride(id engine.EmployeeID, hours decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateDraft {
		return &NotEditableError{RunID: r.ID, State: r.state}
	}
	if hours.IsNegative() {
		return ErrNegativeOverride
	}
	r.overrides[id] = hours
	return nil
}

// ClearSickOverride removes an edit, restoring the profile default.
func (r *Run) ClearSickOverride(id engine.EmployeeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateDraft {
		return &NotEditableError{RunID: r.ID, State: r.state}
	}
	delete(r.overrides, id)
	return nil
}

// sickOverride returns the override for an employee, nil if none.
// Caller must hold r.mu.
func (r *Run) sickOverride(id engine.EmployeeID) *decimal.Decimal {
	if v, ok := r.overrides[id]; ok {
		return &v
	}
	return nil
}

// EffectiveSickUsed is the pure merged lookup: the run's override when
// set, else the profile's working value.
func (r *Run) EffectiveSickUsed(p *payroll.EmployeeProfile) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.overrides[p.ID]; ok {
		return v
	}
	return p.SickLeaveUsed
}

// =============================================================================
// COMPUTE - Pure summary derivation
// =============================================================================

// Compute derives summaries for every selected profile from the period's
// aggregated hours. Employees appearing in the aggregate without a
// profile are reported in Result.Skipped. Pure apart from caching the
// result on the Run for a later Approve.
func (r *Run) Compute(profiles []*payroll.EmployeeProfile, agg timesheet.Aggregate) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	calc := &payroll.Calculator{Mode: r.Mode, Period: r.Period, Policy: r.Policy}

	res := &Result{Diagnostics: agg.Diagnostics}

	known := make(map[engine.EmployeeID]bool, len(profiles))
	for _, p := range profiles {
		known[p.ID] = true
		s := calc.Summarize(p, agg.GrossHours(p.ID), r.sickOverride(p.ID))
		res.Summaries = append(res.Summaries, s)
	}

	// Hours logged by employees outside the profile set: explicit skips.
	for _, id := range agg.Employees() {
		if !known[id] {
			res.Skipped = append(res.Skipped, id)
		}
	}

	res.Totals = payroll.SumSummaries(res.Summaries, nil)

	r.last = res
	return res
}

// LastResult returns the most recently computed result, nil if none.
func (r *Run) LastResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Approve commits the run: Draft -> Approved. For every employee in the
// last computed result it sets
//
//	newBalance = max(0, balance - sickLeaveUsed + sickLeaveAccrued)
//
// and resets the working SickLeaveUsed to zero, as one atomic batch. On
// any failure the state remains Draft and no balance is touched. Returns
// the audit entries describing the commit.
func (r *Run) Approve(ctx context.Context, store payroll.ProfileStore, actor string) ([]AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateDraft {
		return nil, &TransitionError{RunID: r.ID, From: r.state, Event: "approve"}
	}
	if store == nil {
		return nil, ErrNoProfileStore
	}
	if r.last == nil {
		return nil, ErrRunNotComputed
	}

	batch := make([]payroll.BalanceUpdate, 0, len(r.last.Summaries))
	for _, s := range r.last.Summaries {
		p, err := store.Profile(ctx, s.EmployeeID)
		if err != nil {
			return nil, err
		}
		used := s.SickLeaveUsed
		accrued := s.SickLeaveAccrued
		newBalance := engine.ClampNonNegative(p.SickLeaveBalance.Sub(used).Add(accrued))
		batch = append(batch, payroll.BalanceUpdate{
			EmployeeID:       s.EmployeeID,
			SickLeaveUsed:    used,
			SickLeaveAccrued: accrued,
			OldBalance:       p.SickLeaveBalance,
			NewBalance:       newBalance,
		})
	}

	if err := store.CommitBalances(ctx, batch); err != nil {
		return nil, err
	}

	// Committed. Overrides are spent: the profile working values are now
	// zero and the edits must not leak into a future run.
	r.overrides = make(map[engine.EmployeeID]decimal.Decimal)
	r.state = StateApproved

	now := time.Now().UTC()
	entries := make([]AuditEntry, len(batch))
	for i, u := range batch {
		entries[i] = AuditEntry{
			ID:               uuid.NewString(),
			RunID:            r.ID,
			EmployeeID:       u.EmployeeID,
			PeriodStart:      r.Period.Start,
			PeriodEnd:        r.Period.End,
			SickLeaveUsed:    u.SickLeaveUsed,
			SickLeaveAccrued: u.SickLeaveAccrued,
			OldBalance:       u.OldBalance,
			NewBalance:       u.NewBalance,
			Actor:            actor,
			ApprovedAt:       now,
		}
	}
	return entries, nil
}

// Lock freezes the run: Approved -> Locked. An editability gate only;
// no data mutation.
func (r *Run) Lock() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateApproved {
		return &TransitionError{RunID: r.ID, From: r.state, Event: "lock"}
	}
	r.state = StateLocked
	return nil
}

// Unlock reverses the lock gate: Locked -> Approved. Does not undo the
// balance commit.
func (r *Run) Unlock() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLocked {
		return &TransitionError{RunID: r.ID, From: r.state, Event: "unlock"}
	}
	r.state = StateApproved
	return nil
}

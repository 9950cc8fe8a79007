/*
aggregate.go - Per-period hour aggregation

PURPOSE:
  Buckets time entries by (employee, client) within a pay period, with a
  separate billable / non-billable split. This is the sole input source
  for the payroll calculator's gross-hours figure.

RESOLUTION:
  Every entry resolves employee and client through the TaskDirectory.
  An entry whose task or client cannot be resolved is EXCLUDED, but never
  silently: each exclusion is recorded as a Diagnostic so the caller can
  surface orphaned data instead of losing it invisibly.

STATELESSNESS:
  Aggregate() is a pure function. Output is re-derived on every period or
  filter change; nothing is cached between calls.

SEE ALSO:
  - entry.go: Entry and lookup interfaces
  - payroll/calculator.go: consumes the employee totals
*/
package timesheet

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// DIAGNOSTICS - Counted exclusions, not silent drops
// =============================================================================

// DiagnosticReason classifies why an entry was excluded.
type DiagnosticReason string

const (
	ReasonUnknownTask   DiagnosticReason = "unknown_task"   // task -> employee lookup failed
	ReasonUnknownClient DiagnosticReason = "unknown_client" // task -> client lookup failed
)

// Diagnostic records a single excluded entry.
type Diagnostic struct {
	EntryID string
	TaskID  engine.TaskID
	Reason  DiagnosticReason
}

// =============================================================================
// AGGREGATE - Hours bucketed by employee and client
// =============================================================================

var secondsPerHour = decimal.NewFromInt(3600)

// Aggregate is the result of bucketing one period's entries.
type Aggregate struct {
	Period engine.Period

	// Total logged hours per employee (gross hours, before deductions).
	TotalByEmployee map[engine.EmployeeID]decimal.Decimal

	// Hours per employee broken down by client.
	ByClient map[engine.EmployeeID]map[engine.ClientID]decimal.Decimal

	// Billable / non-billable partition per employee.
	BillableByEmployee    map[engine.EmployeeID]decimal.Decimal
	NonBillableByEmployee map[engine.EmployeeID]decimal.Decimal

	// Entries excluded because their task or client could not be resolved.
	Diagnostics []Diagnostic
}

// GrossHours returns the total hours for an employee, zero if none logged.
func (a *Aggregate) GrossHours(id engine.EmployeeID) decimal.Decimal {
	if h, ok := a.TotalByEmployee[id]; ok {
		return h
	}
	return decimal.Zero
}

// Employees returns the IDs of all employees with logged hours, sorted.
func (a *Aggregate) Employees() []engine.EmployeeID {
	ids := make([]engine.EmployeeID, 0, len(a.TotalByEmployee))
	for id := range a.TotalByEmployee {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clients returns the distinct client IDs appearing in the aggregate, sorted.
func (a *Aggregate) Clients() []engine.ClientID {
	seen := make(map[engine.ClientID]bool)
	var ids []engine.ClientID
	for _, perClient := range a.ByClient {
		for c := range perClient {
			if !seen[c] {
				seen[c] = true
				ids = append(ids, c)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AggregateEntries buckets the entries whose start day falls within the
// period. Entries outside the period are ignored; entries whose task or
// client cannot be resolved produce a Diagnostic and are excluded.
func AggregateEntries(entries []Entry, period engine.Period, dir TaskDirectory, billable BillableFunc) Aggregate {
	agg := Aggregate{
		Period:                period,
		TotalByEmployee:       make(map[engine.EmployeeID]decimal.Decimal),
		ByClient:              make(map[engine.EmployeeID]map[engine.ClientID]decimal.Decimal),
		BillableByEmployee:    make(map[engine.EmployeeID]decimal.Decimal),
		NonBillableByEmployee: make(map[engine.EmployeeID]decimal.Decimal),
	}

	for _, e := range entries {
		if !period.Contains(e.Day()) {
			continue
		}

		employee, ok := dir.EmployeeForTask(e.TaskID)
		if !ok {
			agg.Diagnostics = append(agg.Diagnostics, Diagnostic{
				EntryID: e.ID, TaskID: e.TaskID, Reason: ReasonUnknownTask,
			})
			continue
		}
		client, ok := dir.ClientForTask(e.TaskID)
		if !ok {
			agg.Diagnostics = append(agg.Diagnostics, Diagnostic{
				EntryID: e.ID, TaskID: e.TaskID, Reason: ReasonUnknownClient,
			})
			continue
		}

		hours := decimal.NewFromInt(e.DurationSeconds).Div(secondsPerHour)

		agg.TotalByEmployee[employee] = agg.TotalByEmployee[employee].Add(hours)

		perClient := agg.ByClient[employee]
		if perClient == nil {
			perClient = make(map[engine.ClientID]decimal.Decimal)
			agg.ByClient[employee] = perClient
		}
		perClient[client] = perClient[client].Add(hours)

		if billable != nil && billable(e.TaskID) {
			agg.BillableByEmployee[employee] = agg.BillableByEmployee[employee].Add(hours)
		} else {
			agg.NonBillableByEmployee[employee] = agg.NonBillableByEmployee[employee].Add(hours)
		}
	}

	return agg
}

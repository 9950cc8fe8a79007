package timesheet_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// stubDirectory is a fixed task directory for aggregation tests.
type stubDirectory struct {
	employees map[engine.TaskID]engine.EmployeeID
	clients   map[engine.TaskID]engine.ClientID
}

func (d stubDirectory) EmployeeForTask(id engine.TaskID) (engine.EmployeeID, bool) {
	e, ok := d.employees[id]
	return e, ok
}

func (d stubDirectory) ClientForTask(id engine.TaskID) (engine.ClientID, bool) {
	c, ok := d.clients[id]
	return c, ok
}

func weekOf(anchor engine.Date) engine.Period {
	return engine.Resolve(engine.ModeWeek, anchor)
}

func entry(id string, task engine.TaskID, day engine.Date, hours float64) timesheet.Entry {
	return timesheet.Entry{
		ID:              id,
		TaskID:          task,
		Start:           time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC),
		DurationSeconds: int64(hours * 3600),
	}
}

func eq(t *testing.T, got decimal.Decimal, want float64, label string) {
	t.Helper()
	if !got.Equal(decimal.NewFromFloat(want)) {
		t.Errorf("%s: expected %v, got %s", label, want, got)
	}
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregate_BucketsByEmployeeAndClient(t *testing.T) {
	// GIVEN: Two employees logging on two clients over one week
	// WHEN: Aggregating the week
	// THEN: Hours bucket per employee and per employee/client

	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice", "t2": "alice", "t3": "bob"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "acme", "t2": "globex", "t3": "acme"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))
	mon := period.Start

	entries := []timesheet.Entry{
		entry("e1", "t1", mon, 8),
		entry("e2", "t1", mon.AddDays(1), 7.5),
		entry("e3", "t2", mon.AddDays(2), 4),
		entry("e4", "t3", mon, 6),
	}

	agg := timesheet.AggregateEntries(entries, period, dir, nil)

	eq(t, agg.GrossHours("alice"), 19.5, "alice gross")
	eq(t, agg.GrossHours("bob"), 6, "bob gross")
	eq(t, agg.ByClient["alice"]["acme"], 15.5, "alice/acme")
	eq(t, agg.ByClient["alice"]["globex"], 4, "alice/globex")
	eq(t, agg.ByClient["bob"]["acme"], 6, "bob/acme")

	if len(agg.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", agg.Diagnostics)
	}
}

func TestAggregate_FiltersOutsidePeriod(t *testing.T) {
	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "acme"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	entries := []timesheet.Entry{
		entry("in", "t1", period.Start, 8),
		entry("before", "t1", period.Start.AddDays(-1), 8),
		entry("after", "t1", period.End.AddDays(1), 8),
	}

	agg := timesheet.AggregateEntries(entries, period, dir, nil)
	eq(t, agg.GrossHours("alice"), 8, "only in-period hours count")
}

func TestAggregate_UnknownTaskBecomesDiagnostic(t *testing.T) {
	// An entry whose task is not in the directory is excluded from all
	// buckets and reported, never silently dropped.
	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "acme"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	entries := []timesheet.Entry{
		entry("good", "t1", period.Start, 8),
		entry("orphan", "t-unknown", period.Start, 5),
	}

	agg := timesheet.AggregateEntries(entries, period, dir, nil)

	eq(t, agg.GrossHours("alice"), 8, "orphan hours excluded")
	if len(agg.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(agg.Diagnostics))
	}
	d := agg.Diagnostics[0]
	if d.EntryID != "orphan" || d.Reason != timesheet.ReasonUnknownTask {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestAggregate_UnknownClientBecomesDiagnostic(t *testing.T) {
	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice"},
		clients:   map[engine.TaskID]engine.ClientID{},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	agg := timesheet.AggregateEntries([]timesheet.Entry{entry("e1", "t1", period.Start, 8)}, period, dir, nil)

	if !agg.GrossHours("alice").IsZero() {
		t.Errorf("hours with unresolvable client must not count, got %s", agg.GrossHours("alice"))
	}
	if len(agg.Diagnostics) != 1 || agg.Diagnostics[0].Reason != timesheet.ReasonUnknownClient {
		t.Errorf("expected one unknown-client diagnostic, got %v", agg.Diagnostics)
	}
}

func TestAggregate_BillableSplit(t *testing.T) {
	// GIVEN: A billability predicate marking only t1 billable
	// THEN: Billable and non-billable buckets partition the gross hours

	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice", "t2": "alice"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "acme", "t2": "internal"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	entries := []timesheet.Entry{
		entry("e1", "t1", period.Start, 6),
		entry("e2", "t2", period.Start, 2),
	}
	billable := func(id engine.TaskID) bool { return id == "t1" }

	agg := timesheet.AggregateEntries(entries, period, dir, billable)

	eq(t, agg.BillableByEmployee["alice"], 6, "billable")
	eq(t, agg.NonBillableByEmployee["alice"], 2, "non-billable")
	eq(t, agg.GrossHours("alice"), 8, "gross = billable + non-billable")
}

func TestAggregate_FractionalSeconds(t *testing.T) {
	// 45 minutes = 2700 seconds = 0.75 hours, exactly, in decimal.
	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "alice"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "acme"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	e := entry("e1", "t1", period.Start, 0)
	e.DurationSeconds = 2700

	agg := timesheet.AggregateEntries([]timesheet.Entry{e}, period, dir, nil)
	eq(t, agg.GrossHours("alice"), 0.75, "fractional hours")
}

func TestAggregate_EmployeesAndClientsSorted(t *testing.T) {
	dir := stubDirectory{
		employees: map[engine.TaskID]engine.EmployeeID{"t1": "zoe", "t2": "adam"},
		clients:   map[engine.TaskID]engine.ClientID{"t1": "zenith", "t2": "acme"},
	}
	period := weekOf(engine.NewDate(2026, time.March, 4))

	entries := []timesheet.Entry{
		entry("e1", "t1", period.Start, 1),
		entry("e2", "t2", period.Start, 1),
	}
	agg := timesheet.AggregateEntries(entries, period, dir, nil)

	emps := agg.Employees()
	if len(emps) != 2 || emps[0] != "adam" || emps[1] != "zoe" {
		t.Errorf("expected sorted employees [adam zoe], got %v", emps)
	}
	clients := agg.Clients()
	if len(clients) != 2 || clients[0] != "acme" || clients[1] != "zenith" {
		t.Errorf("expected sorted clients [acme zenith], got %v", clients)
	}
}

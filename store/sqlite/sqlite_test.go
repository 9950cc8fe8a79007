package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/approval"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func testProfile(id engine.EmployeeID) *payroll.EmployeeProfile {
	lunch := 45
	otRate := dec(42.5)
	salary := dec(91000)
	return &payroll.EmployeeProfile{
		ID:                id,
		Name:              "Test " + string(id),
		Employment:        payroll.Hourly,
		HourlyRate:        dec(31.25),
		OvertimeRate:      &otRate,
		LunchBreakMinutes: &lunch,
		OvertimeEnabled:   true,
		HoursPerWeek:      dec(40),
		AnnualSalary:      &salary,
		Holidays:          []engine.Date{engine.NewDate(2026, time.July, 3)},
		PTODays:           []engine.Date{engine.NewDate(2026, time.March, 3)},
		SickLeaveBalance:  dec(16.5),
		SickLeaveUsed:     dec(2),
	}
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfile_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testProfile("emp-1")
	if err := store.SaveProfile(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Profile(ctx, "emp-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got.Name != want.Name || got.Employment != want.Employment {
		t.Errorf("identity fields drifted: %+v", got)
	}
	if !got.HourlyRate.Equal(want.HourlyRate) {
		t.Errorf("hourly rate: want %s, got %s", want.HourlyRate, got.HourlyRate)
	}
	if got.OvertimeRate == nil || !got.OvertimeRate.Equal(*want.OvertimeRate) {
		t.Errorf("overtime rate did not round-trip: %v", got.OvertimeRate)
	}
	if got.LunchBreakMinutes == nil || *got.LunchBreakMinutes != 45 {
		t.Errorf("lunch minutes did not round-trip: %v", got.LunchBreakMinutes)
	}
	if got.OvertimeThresholdHours != nil {
		t.Errorf("nil threshold must stay nil, got %v", got.OvertimeThresholdHours)
	}
	if got.AnnualSalary == nil || !got.AnnualSalary.Equal(dec(91000)) {
		t.Errorf("annual salary did not round-trip: %v", got.AnnualSalary)
	}
	if len(got.Holidays) != 1 || !got.Holidays[0].Equal(engine.NewDate(2026, time.July, 3)) {
		t.Errorf("holidays did not round-trip: %v", got.Holidays)
	}
	if len(got.PTODays) != 1 {
		t.Errorf("pto days did not round-trip: %v", got.PTODays)
	}
	if !got.SickLeaveBalance.Equal(dec(16.5)) || !got.SickLeaveUsed.Equal(dec(2)) {
		t.Errorf("sick leave state drifted: balance %s used %s",
			got.SickLeaveBalance, got.SickLeaveUsed)
	}
}

func TestProfile_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Profile(context.Background(), "nobody")
	if !errors.Is(err, payroll.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSaveProfile_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testProfile("emp-1")
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	p.Name = "Renamed"
	p.HourlyRate = dec(50)
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, _ := store.Profile(ctx, "emp-1")
	if got.Name != "Renamed" || !got.HourlyRate.Equal(dec(50)) {
		t.Errorf("upsert did not replace: %+v", got)
	}

	all, err := store.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 profile after upsert, got %d", len(all))
	}
}

// =============================================================================
// BALANCE COMMIT TESTS
// =============================================================================

func TestCommitBalances_AppliesWholeBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []engine.EmployeeID{"a", "b"} {
		p := testProfile(id)
		if err := store.SaveProfile(ctx, p); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	batch := []payroll.BalanceUpdate{
		{EmployeeID: "a", NewBalance: dec(20)},
		{EmployeeID: "b", NewBalance: dec(0)},
	}
	if err := store.CommitBalances(ctx, batch); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	a, _ := store.Profile(ctx, "a")
	if !a.SickLeaveBalance.Equal(dec(20)) || !a.SickLeaveUsed.IsZero() {
		t.Errorf("a: balance %s used %s", a.SickLeaveBalance, a.SickLeaveUsed)
	}
	b, _ := store.Profile(ctx, "b")
	if !b.SickLeaveBalance.IsZero() {
		t.Errorf("b: balance %s", b.SickLeaveBalance)
	}
}

func TestCommitBalances_MissingEmployeeRollsBackEverything(t *testing.T) {
	// GIVEN: A batch where the second employee does not exist
	// THEN: The first employee's balance is untouched

	store := newTestStore(t)
	ctx := context.Background()
	if err := store.SaveProfile(ctx, testProfile("a")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	batch := []payroll.BalanceUpdate{
		{EmployeeID: "a", NewBalance: dec(99)},
		{EmployeeID: "ghost", NewBalance: dec(1)},
	}
	err := store.CommitBalances(ctx, batch)
	if !errors.Is(err, payroll.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	a, _ := store.Profile(ctx, "a")
	if !a.SickLeaveBalance.Equal(dec(16.5)) {
		t.Errorf("partial commit observed: balance %s", a.SickLeaveBalance)
	}
	if !a.SickLeaveUsed.Equal(dec(2)) {
		t.Errorf("partial commit observed: used %s", a.SickLeaveUsed)
	}
}

// =============================================================================
// POLICY TESTS
// =============================================================================

func TestSickLeavePolicy_DefaultWhenUnset(t *testing.T) {
	store := newTestStore(t)
	policy, err := store.SickLeavePolicy(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if policy.Method != payroll.AccrualLumpSum {
		t.Errorf("expected lump-sum default, got %s", policy.Method)
	}
}

func TestSickLeavePolicy_RoundTripAndReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	maxAccrual := dec(48)
	want := payroll.SickLeavePolicy{
		Method:     payroll.AccrualPerHour,
		Rate:       dec(30),
		MaxAccrual: &maxAccrual,
	}
	if err := store.SaveSickLeavePolicy(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.SickLeavePolicy(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Method != want.Method || !got.Rate.Equal(want.Rate) {
		t.Errorf("policy drifted: %+v", got)
	}
	if got.MaxAccrual == nil || !got.MaxAccrual.Equal(dec(48)) {
		t.Errorf("cap did not round-trip: %v", got.MaxAccrual)
	}

	// Singleton row: a second save replaces, never duplicates.
	replacement := payroll.SickLeavePolicy{Method: payroll.AccrualPerPayPeriod, Rate: dec(2)}
	if err := store.SaveSickLeavePolicy(ctx, replacement); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, _ = store.SickLeavePolicy(ctx)
	if got.Method != payroll.AccrualPerPayPeriod || got.MaxAccrual != nil {
		t.Errorf("replacement not applied: %+v", got)
	}
}

// =============================================================================
// ENTRY AND TASK TESTS
// =============================================================================

func TestEntries_RangeQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mk := func(id string, day engine.Date) timesheet.Entry {
		return timesheet.Entry{
			ID:              id,
			TaskID:          "t1",
			Start:           time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC),
			DurationSeconds: 3600,
		}
	}

	entries := []timesheet.Entry{
		mk("before", engine.NewDate(2026, time.March, 1)),
		mk("first", engine.NewDate(2026, time.March, 2)),
		mk("last", engine.NewDate(2026, time.March, 8)),
		mk("after", engine.NewDate(2026, time.March, 9)),
	}
	for _, e := range entries {
		if err := store.AppendEntry(ctx, e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := store.EntriesInRange(ctx,
		engine.NewDate(2026, time.March, 2), engine.NewDate(2026, time.March, 8))
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Range bounds are inclusive and results come back in start order.
	if got[0].ID != "first" || got[1].ID != "last" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestTasks_DirectoryLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := timesheet.Task{ID: "t1", EmployeeID: "alice", ClientID: "acme", Completed: true}
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if emp, ok := store.EmployeeForTask("t1"); !ok || emp != "alice" {
		t.Errorf("employee lookup: %v %v", emp, ok)
	}
	if client, ok := store.ClientForTask("t1"); !ok || client != "acme" {
		t.Errorf("client lookup: %v %v", client, ok)
	}
	if !store.Billable("t1") {
		t.Error("completed task should be billable")
	}

	if _, ok := store.EmployeeForTask("t-missing"); ok {
		t.Error("missing task should not resolve")
	}
	if store.Billable("t-missing") {
		t.Error("missing task should not be billable")
	}
}

// =============================================================================
// AUDIT LOG TESTS
// =============================================================================

func TestAuditLog_AppendAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)
	entries := []approval.AuditEntry{
		{
			ID: "audit-1", RunID: "run-1", EmployeeID: "alice",
			PeriodStart: engine.NewDate(2026, time.March, 2),
			PeriodEnd:   engine.NewDate(2026, time.March, 8),
			SickLeaveUsed: dec(8), SickLeaveAccrued: dec(1.5),
			OldBalance: dec(16), NewBalance: dec(9.5),
			Actor: "manager-1", ApprovedAt: now,
		},
		{
			ID: "audit-2", RunID: "run-1", EmployeeID: "bob",
			PeriodStart: engine.NewDate(2026, time.March, 2),
			PeriodEnd:   engine.NewDate(2026, time.March, 8),
			SickLeaveUsed: dec(0), SickLeaveAccrued: dec(2),
			OldBalance: dec(4), NewBalance: dec(6),
			Actor: "manager-1", ApprovedAt: now,
		},
	}
	if err := store.AppendApprovals(ctx, entries); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := store.ApprovalsForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	e := got[0]
	if e.EmployeeID != "alice" || !e.NewBalance.Equal(dec(9.5)) || e.Actor != "manager-1" {
		t.Errorf("entry drifted: %+v", e)
	}
	if !e.ApprovedAt.Equal(now) {
		t.Errorf("timestamp drifted: %s", e.ApprovedAt)
	}

	other, err := store.ApprovalsForRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no entries for other run, got %d", len(other))
	}
}

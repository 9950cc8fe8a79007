package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/timesheet"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestProfiles_ClonedOnReturn(t *testing.T) {
	// Mutating a returned profile must not leak into the store.
	store := memory.New()
	ctx := context.Background()

	p := &payroll.EmployeeProfile{
		ID:               "emp-1",
		Name:             "Original",
		Employment:       payroll.Hourly,
		HourlyRate:       dec(30),
		SickLeaveBalance: dec(10),
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, _ := store.Profile(ctx, "emp-1")
	got.Name = "Mutated"
	got.SickLeaveBalance = dec(999)

	again, _ := store.Profile(ctx, "emp-1")
	if again.Name != "Original" || !again.SickLeaveBalance.Equal(dec(10)) {
		t.Errorf("store state leaked through a returned profile: %+v", again)
	}
}

func TestCommitBalances_AtomicValidation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	p := &payroll.EmployeeProfile{
		ID: "a", Employment: payroll.Hourly,
		SickLeaveBalance: dec(5), SickLeaveUsed: dec(1),
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Whole batch validated before anything is applied.
	err := store.CommitBalances(ctx, []payroll.BalanceUpdate{
		{EmployeeID: "a", NewBalance: dec(9)},
		{EmployeeID: "ghost", NewBalance: dec(1)},
	})
	if !errors.Is(err, payroll.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	a, _ := store.Profile(ctx, "a")
	if !a.SickLeaveBalance.Equal(dec(5)) || !a.SickLeaveUsed.Equal(dec(1)) {
		t.Errorf("partial commit observed: %+v", a)
	}

	// A valid batch applies and resets the working value.
	if err := store.CommitBalances(ctx, []payroll.BalanceUpdate{
		{EmployeeID: "a", NewBalance: dec(9)},
	}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	a, _ = store.Profile(ctx, "a")
	if !a.SickLeaveBalance.Equal(dec(9)) || !a.SickLeaveUsed.IsZero() {
		t.Errorf("commit not applied: %+v", a)
	}
}

func TestEntries_SortedInsertAndRange(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	mk := func(id string, day int) timesheet.Entry {
		return timesheet.Entry{
			ID:              id,
			TaskID:          "t1",
			Start:           time.Date(2026, time.March, day, 9, 0, 0, 0, time.UTC),
			DurationSeconds: 3600,
		}
	}

	// Appended out of order; range queries come back sorted.
	for _, e := range []timesheet.Entry{mk("c", 6), mk("a", 2), mk("b", 4)} {
		if err := store.AppendEntry(ctx, e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := store.EntriesInRange(ctx,
		engine.NewDate(2026, time.March, 2), engine.NewDate(2026, time.March, 5))
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("unexpected range result: %+v", got)
	}
}

func TestTasks_DirectoryAndBillability(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if err := store.SaveTask(ctx, timesheet.Task{
		ID: "t1", EmployeeID: "alice", ClientID: "acme", Completed: true,
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveTask(ctx, timesheet.Task{
		ID: "t2", EmployeeID: "alice", ClientID: "internal",
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if emp, ok := store.EmployeeForTask("t1"); !ok || emp != "alice" {
		t.Errorf("employee lookup: %v %v", emp, ok)
	}
	if !store.Billable("t1") {
		t.Error("completed task should be billable")
	}
	if store.Billable("t2") {
		t.Error("incomplete task should not be billable")
	}
}

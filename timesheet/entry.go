// Package timesheet aggregates raw time entries into per-employee hour
// buckets for a pay period. It owns no data: entries, the task directory,
// and the billability signal are all supplied by the hosting application.
package timesheet

import (
	"time"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// TIME ENTRY - Immutable record of elapsed work
// =============================================================================

// Entry is a single tracked block of work. The employee and client are not
// stored on the entry; both resolve through the entry's task.
type Entry struct {
	ID              string
	TaskID          engine.TaskID
	Start           time.Time
	DurationSeconds int64
}

// Day returns the calendar day the entry started on. Period membership is
// decided by the start day alone, even if the entry spans midnight.
func (e Entry) Day() engine.Date {
	return engine.DateOf(e.Start)
}

// =============================================================================
// EXTERNAL LOOKUPS
// =============================================================================

// TaskDirectory resolves a task to its owning employee and client.
// Implemented by the hosting application's project/task subsystem; the
// stores in store/memory and store/sqlite implement it for the server.
type TaskDirectory interface {
	// EmployeeForTask returns the employee a task belongs to.
	EmployeeForTask(id engine.TaskID) (engine.EmployeeID, bool)

	// ClientForTask returns the client a task is billed against.
	ClientForTask(id engine.TaskID) (engine.ClientID, bool)
}

// BillableFunc decides whether a task's time is billable. The hosting
// application supplies this; the reference implementation treats "task
// completed" as the billability signal, which is a known-weak proxy.
type BillableFunc func(id engine.TaskID) bool

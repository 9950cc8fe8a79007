package timesheet

import (
	"context"

	"github.com/warp/payroll-engine/engine"
)

// EntryStore persists time entries. Entries are immutable once recorded;
// the engine only ever appends and reads.
type EntryStore interface {
	// AppendEntry records a new entry.
	AppendEntry(ctx context.Context, e Entry) error

	// EntriesInRange returns entries whose start day falls in [from, to],
	// ordered by start time.
	EntriesInRange(ctx context.Context, from, to engine.Date) ([]Entry, error)
}

// Task is the record behind the TaskDirectory lookups. Owned by the
// hosting application's project subsystem; the server stores a copy so
// entries can resolve.
type Task struct {
	ID         engine.TaskID
	EmployeeID engine.EmployeeID
	ClientID   engine.ClientID

	// Completed doubles as the billability signal. A questionable proxy,
	// but it is what the reference data provides.
	Completed bool
}

// TaskStore persists tasks and serves the directory lookups.
type TaskStore interface {
	TaskDirectory

	// SaveTask creates or replaces a task.
	SaveTask(ctx context.Context, t Task) error

	// Tasks returns all tasks.
	Tasks(ctx context.Context) ([]Task, error)
}

// Package memory provides in-memory store implementations for tests and
// the dev server. Every interface the SQLite store implements is
// implemented here with the same semantics, including the atomic
// validate-then-apply balance commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/approval"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// Store holds all engine data in memory, guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	profiles map[engine.EmployeeID]*payroll.EmployeeProfile
	tasks    map[engine.TaskID]timesheet.Task
	entries  []timesheet.Entry
	policy   payroll.SickLeavePolicy
	audit    []approval.AuditEntry
}

func New() *Store {
	return &Store{
		profiles: make(map[engine.EmployeeID]*payroll.EmployeeProfile),
		tasks:    make(map[engine.TaskID]timesheet.Task),
		policy:   payroll.SickLeavePolicy{Method: payroll.AccrualLumpSum},
	}
}

// Compile-time interface checks.
var (
	_ payroll.ProfileStore  = (*Store)(nil)
	_ payroll.PolicyStore   = (*Store)(nil)
	_ timesheet.EntryStore  = (*Store)(nil)
	_ timesheet.TaskStore   = (*Store)(nil)
	_ approval.AuditLog     = (*Store)(nil)
)

// =============================================================================
// PROFILE STORE
// =============================================================================

func (s *Store) Profile(_ context.Context, id engine.EmployeeID) (*payroll.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, &payroll.MissingProfileError{EmployeeID: id}
	}
	return p.Clone(), nil
}

func (s *Store) ListProfiles(_ context.Context) ([]*payroll.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*payroll.EmployeeProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SaveProfile(_ context.Context, p *payroll.EmployeeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
	return nil
}

// CommitBalances validates the whole batch before touching anything, so
// the apply pass cannot fail halfway. All-or-nothing under one lock.
func (s *Store) CommitBalances(_ context.Context, batch []payroll.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range batch {
		if _, ok := s.profiles[u.EmployeeID]; !ok {
			return &payroll.MissingProfileError{EmployeeID: u.EmployeeID}
		}
	}
	for _, u := range batch {
		p := s.profiles[u.EmployeeID]
		p.SickLeaveBalance = u.NewBalance
		p.SickLeaveUsed = decimal.Zero
	}
	return nil
}

// =============================================================================
// POLICY STORE
// =============================================================================

func (s *Store) SickLeavePolicy(_ context.Context) (payroll.SickLeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy, nil
}

func (s *Store) SaveSickLeavePolicy(_ context.Context, p payroll.SickLeavePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
	return nil
}

// =============================================================================
// ENTRY STORE
// =============================================================================

func (s *Store) AppendEntry(_ context.Context, e timesheet.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert in start-time order.
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Start.After(e.Start)
	})
	s.entries = append(s.entries, timesheet.Entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	return nil
}

func (s *Store) EntriesInRange(_ context.Context, from, to engine.Date) ([]timesheet.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []timesheet.Entry
	for _, e := range s.entries {
		d := e.Day()
		if from.BeforeOrEqual(d) && d.BeforeOrEqual(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// TASK STORE / DIRECTORY
// =============================================================================

func (s *Store) SaveTask(_ context.Context, t timesheet.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return nil
}

func (s *Store) Tasks(_ context.Context) ([]timesheet.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]timesheet.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) EmployeeForTask(id engine.TaskID) (engine.EmployeeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.EmployeeID == "" {
		return "", false
	}
	return t.EmployeeID, true
}

func (s *Store) ClientForTask(id engine.TaskID) (engine.ClientID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.ClientID == "" {
		return "", false
	}
	return t.ClientID, true
}

// Billable reports whether a task's time is billable. Task completion is
// the signal the reference data provides.
func (s *Store) Billable(id engine.TaskID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[id].Completed
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) AppendApprovals(_ context.Context, entries []approval.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entries...)
	return nil
}

func (s *Store) ApprovalsForRun(_ context.Context, runID string) ([]approval.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []approval.AuditEntry
	for _, e := range s.audit {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

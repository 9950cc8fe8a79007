/*
Package sqlite provides the SQLite-backed store for the payroll engine.

PURPOSE:
  Implements every persistence interface the engine defines:
    payroll.ProfileStore   employee profiles + atomic balance commits
    payroll.PolicyStore    the firm sick leave policy (singleton row)
    timesheet.EntryStore   immutable time entries
    timesheet.TaskStore    task directory lookups
    approval.AuditLog      append-only approval trail

KEY TABLES:
  employees      profile parameters, balances; decimals stored as TEXT
  tasks          task -> (employee, client, completed)
  time_entries   immutable; only INSERT and SELECT
  firm_policy    one row, replaced on save
  approval_log   append-only; no UPDATE or DELETE statements exist

ATOMIC COMMITS:
  CommitBalances wraps the whole approval batch in one database
  transaction. A missing employee mid-batch rolls back everything;
  no partial approval can be observed.

WAL MODE:
  Opened with WAL for better read concurrency and crash recovery.

USAGE:
  store, err := sqlite.New("./payroll.db")   // ":memory:" for tests
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/approval"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ payroll.ProfileStore = (*Store)(nil)
	_ payroll.PolicyStore  = (*Store)(nil)
	_ timesheet.EntryStore = (*Store)(nil)
	_ timesheet.TaskStore  = (*Store)(nil)
	_ approval.AuditLog    = (*Store)(nil)
)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Employee profiles. Decimal columns are stored as TEXT to keep
	-- exact values; they never pass through float64.
	CREATE TABLE IF NOT EXISTS employees (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		employment          TEXT NOT NULL,
		hourly_rate         TEXT NOT NULL,
		overtime_rate       TEXT,
		overtime_threshold  TEXT,
		lunch_break_minutes INTEGER,
		overtime_enabled    INTEGER NOT NULL DEFAULT 0,
		hours_per_week      TEXT NOT NULL DEFAULT '0',
		annual_salary       TEXT,
		holidays            TEXT NOT NULL DEFAULT '[]',
		pto_days            TEXT NOT NULL DEFAULT '[]',
		sick_leave_balance  TEXT NOT NULL DEFAULT '0',
		sick_leave_used     TEXT NOT NULL DEFAULT '0'
	);

	-- Task directory: entry resolution goes through here.
	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		client_id   TEXT NOT NULL,
		completed   INTEGER NOT NULL DEFAULT 0
	);

	-- Time entries (immutable; only INSERT and SELECT)
	CREATE TABLE IF NOT EXISTS time_entries (
		id               TEXT PRIMARY KEY,
		task_id          TEXT NOT NULL,
		start_at         TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_time_entries_start ON time_entries(start_at);

	-- Firm sick leave policy (singleton row)
	CREATE TABLE IF NOT EXISTS firm_policy (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		accrual_method TEXT NOT NULL,
		accrual_rate   TEXT NOT NULL,
		max_accrual    TEXT
	);

	-- Approval audit trail (append-only; no UPDATE or DELETE, ever)
	CREATE TABLE IF NOT EXISTS approval_log (
		id           TEXT PRIMARY KEY,
		run_id       TEXT NOT NULL,
		employee_id  TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end   TEXT NOT NULL,
		sick_used    TEXT NOT NULL,
		sick_accrued TEXT NOT NULL,
		old_balance  TEXT NOT NULL,
		new_balance  TEXT NOT NULL,
		actor        TEXT,
		approved_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_approval_log_run ON approval_log(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROFILE STORE
// =============================================================================

const profileColumns = `id, name, employment, hourly_rate, overtime_rate,
	overtime_threshold, lunch_break_minutes, overtime_enabled, hours_per_week,
	annual_salary, holidays, pto_days, sick_leave_balance, sick_leave_used`

func (s *Store) Profile(ctx context.Context, id engine.EmployeeID) (*payroll.EmployeeProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM employees WHERE id = ?`, string(id))
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, &payroll.MissingProfileError{EmployeeID: id}
	}
	return p, err
}

func (s *Store) ListProfiles(ctx context.Context) ([]*payroll.EmployeeProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*payroll.EmployeeProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SaveProfile(ctx context.Context, p *payroll.EmployeeProfile) error {
	holidays, err := marshalDates(p.Holidays)
	if err != nil {
		return err
	}
	ptoDays, err := marshalDates(p.PTODays)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			employment = excluded.employment,
			hourly_rate = excluded.hourly_rate,
			overtime_rate = excluded.overtime_rate,
			overtime_threshold = excluded.overtime_threshold,
			lunch_break_minutes = excluded.lunch_break_minutes,
			overtime_enabled = excluded.overtime_enabled,
			hours_per_week = excluded.hours_per_week,
			annual_salary = excluded.annual_salary,
			holidays = excluded.holidays,
			pto_days = excluded.pto_days,
			sick_leave_balance = excluded.sick_leave_balance,
			sick_leave_used = excluded.sick_leave_used`,
		string(p.ID), p.Name, string(p.Employment), p.HourlyRate.String(),
		decimalPtr(p.OvertimeRate), decimalPtr(p.OvertimeThresholdHours),
		intPtr(p.LunchBreakMinutes), boolToInt(p.OvertimeEnabled),
		p.HoursPerWeek.String(), decimalPtr(p.AnnualSalary),
		holidays, ptoDays,
		p.SickLeaveBalance.String(), p.SickLeaveUsed.String())
	return err
}

// CommitBalances applies the approval batch in one database transaction.
func (s *Store) CommitBalances(ctx context.Context, batch []payroll.BalanceUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range batch {
		res, err := tx.ExecContext(ctx,
			`UPDATE employees SET sick_leave_balance = ?, sick_leave_used = '0' WHERE id = ?`,
			u.NewBalance.String(), string(u.EmployeeID))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &payroll.MissingProfileError{EmployeeID: u.EmployeeID}
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (*payroll.EmployeeProfile, error) {
	var (
		id, name, employment     string
		hourlyRate, hoursPerWeek string
		balance, used            string
		overtimeRate, threshold  sql.NullString
		annualSalary             sql.NullString
		lunchMinutes             sql.NullInt64
		overtimeEnabled          int
		holidaysJSON, ptoJSON    string
	)
	err := r.Scan(&id, &name, &employment, &hourlyRate, &overtimeRate,
		&threshold, &lunchMinutes, &overtimeEnabled, &hoursPerWeek,
		&annualSalary, &holidaysJSON, &ptoJSON, &balance, &used)
	if err != nil {
		return nil, err
	}

	p := &payroll.EmployeeProfile{
		ID:               engine.EmployeeID(id),
		Name:             name,
		Employment:       payroll.EmploymentType(employment),
		HourlyRate:       engine.ParseDecimalOrZero(hourlyRate),
		OvertimeEnabled:  overtimeEnabled != 0,
		HoursPerWeek:     engine.ParseDecimalOrZero(hoursPerWeek),
		SickLeaveBalance: engine.ParseDecimalOrZero(balance),
		SickLeaveUsed:    engine.ParseDecimalOrZero(used),
	}
	if overtimeRate.Valid {
		v := engine.ParseDecimalOrZero(overtimeRate.String)
		p.OvertimeRate = &v
	}
	if threshold.Valid {
		v := engine.ParseDecimalOrZero(threshold.String)
		p.OvertimeThresholdHours = &v
	}
	if lunchMinutes.Valid {
		v := int(lunchMinutes.Int64)
		p.LunchBreakMinutes = &v
	}
	if annualSalary.Valid {
		v := engine.ParseDecimalOrZero(annualSalary.String)
		p.AnnualSalary = &v
	}

	if p.Holidays, err = unmarshalDates(holidaysJSON); err != nil {
		return nil, err
	}
	if p.PTODays, err = unmarshalDates(ptoJSON); err != nil {
		return nil, err
	}
	return p, nil
}

// =============================================================================
// POLICY STORE
// =============================================================================

func (s *Store) SickLeavePolicy(ctx context.Context) (payroll.SickLeavePolicy, error) {
	var (
		method, rate string
		maxAccrual   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT accrual_method, accrual_rate, max_accrual FROM firm_policy WHERE id = 1`).
		Scan(&method, &rate, &maxAccrual)
	if err == sql.ErrNoRows {
		// No policy configured: lump-sum, zero accrual during periods.
		return payroll.SickLeavePolicy{Method: payroll.AccrualLumpSum}, nil
	}
	if err != nil {
		return payroll.SickLeavePolicy{}, err
	}

	policy := payroll.SickLeavePolicy{
		Method: payroll.AccrualMethod(method),
		Rate:   engine.ParseDecimalOrZero(rate),
	}
	if maxAccrual.Valid {
		v := engine.ParseDecimalOrZero(maxAccrual.String)
		policy.MaxAccrual = &v
	}
	return policy, nil
}

func (s *Store) SaveSickLeavePolicy(ctx context.Context, p payroll.SickLeavePolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO firm_policy (id, accrual_method, accrual_rate, max_accrual)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			accrual_method = excluded.accrual_method,
			accrual_rate = excluded.accrual_rate,
			max_accrual = excluded.max_accrual`,
		string(p.Method), p.Rate.String(), decimalPtr(p.MaxAccrual))
	return err
}

// =============================================================================
// ENTRY STORE
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e timesheet.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries (id, task_id, start_at, duration_seconds)
		VALUES (?, ?, ?, ?)`,
		e.ID, string(e.TaskID), e.Start.UTC().Format(time.RFC3339), e.DurationSeconds)
	return err
}

func (s *Store) EntriesInRange(ctx context.Context, from, to engine.Date) ([]timesheet.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, start_at, duration_seconds
		FROM time_entries
		WHERE substr(start_at, 1, 10) BETWEEN ? AND ?
		ORDER BY start_at`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.Entry
	for rows.Next() {
		var (
			e       timesheet.Entry
			taskID  string
			startAt string
		)
		if err := rows.Scan(&e.ID, &taskID, &startAt, &e.DurationSeconds); err != nil {
			return nil, err
		}
		e.TaskID = engine.TaskID(taskID)
		if e.Start, err = time.Parse(time.RFC3339, startAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// TASK STORE / DIRECTORY
// =============================================================================

func (s *Store) SaveTask(ctx context.Context, t timesheet.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, employee_id, client_id, completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			client_id = excluded.client_id,
			completed = excluded.completed`,
		string(t.ID), string(t.EmployeeID), string(t.ClientID), boolToInt(t.Completed))
	return err
}

func (s *Store) Tasks(ctx context.Context) ([]timesheet.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, client_id, completed FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.Task
	for rows.Next() {
		var (
			t                      timesheet.Task
			id, employeeID, client string
			completed              int
		)
		if err := rows.Scan(&id, &employeeID, &client, &completed); err != nil {
			return nil, err
		}
		t.ID = engine.TaskID(id)
		t.EmployeeID = engine.EmployeeID(employeeID)
		t.ClientID = engine.ClientID(client)
		t.Completed = completed != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeForTask(id engine.TaskID) (engine.EmployeeID, bool) {
	var employeeID string
	err := s.db.QueryRow(`SELECT employee_id FROM tasks WHERE id = ?`, string(id)).Scan(&employeeID)
	if err != nil || employeeID == "" {
		return "", false
	}
	return engine.EmployeeID(employeeID), true
}

func (s *Store) ClientForTask(id engine.TaskID) (engine.ClientID, bool) {
	var clientID string
	err := s.db.QueryRow(`SELECT client_id FROM tasks WHERE id = ?`, string(id)).Scan(&clientID)
	if err != nil || clientID == "" {
		return "", false
	}
	return engine.ClientID(clientID), true
}

// Billable reports task completion, the billability signal in the
// reference data.
func (s *Store) Billable(id engine.TaskID) bool {
	var completed int
	if err := s.db.QueryRow(`SELECT completed FROM tasks WHERE id = ?`, string(id)).Scan(&completed); err != nil {
		return false
	}
	return completed != 0
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) AppendApprovals(ctx context.Context, entries []approval.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO approval_log (id, run_id, employee_id, period_start,
				period_end, sick_used, sick_accrued, old_balance, new_balance,
				actor, approved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.RunID, string(e.EmployeeID),
			e.PeriodStart.String(), e.PeriodEnd.String(),
			e.SickLeaveUsed.String(), e.SickLeaveAccrued.String(),
			e.OldBalance.String(), e.NewBalance.String(),
			e.Actor, e.ApprovedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ApprovalsForRun(ctx context.Context, runID string) ([]approval.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, employee_id, period_start, period_end, sick_used,
			sick_accrued, old_balance, new_balance, actor, approved_at
		FROM approval_log WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []approval.AuditEntry
	for rows.Next() {
		var (
			e                         approval.AuditEntry
			employeeID                string
			periodStart, periodEnd    string
			used, accrued, oldB, newB string
			approvedAt                string
		)
		err := rows.Scan(&e.ID, &e.RunID, &employeeID, &periodStart, &periodEnd,
			&used, &accrued, &oldB, &newB, &e.Actor, &approvedAt)
		if err != nil {
			return nil, err
		}
		e.EmployeeID = engine.EmployeeID(employeeID)
		if e.PeriodStart, err = engine.ParseDate(periodStart); err != nil {
			return nil, err
		}
		if e.PeriodEnd, err = engine.ParseDate(periodEnd); err != nil {
			return nil, err
		}
		e.SickLeaveUsed = engine.ParseDecimalOrZero(used)
		e.SickLeaveAccrued = engine.ParseDecimalOrZero(accrued)
		e.OldBalance = engine.ParseDecimalOrZero(oldB)
		e.NewBalance = engine.ParseDecimalOrZero(newB)
		if e.ApprovedAt, err = time.Parse(time.RFC3339, approvedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func marshalDates(dates []engine.Date) (string, error) {
	strs := make([]string, len(dates))
	for i, d := range dates {
		strs[i] = d.String()
	}
	b, err := json.Marshal(strs)
	return string(b), err
}

func unmarshalDates(s string) ([]engine.Date, error) {
	var strs []string
	if err := json.Unmarshal([]byte(s), &strs); err != nil {
		return nil, err
	}
	dates := make([]engine.Date, 0, len(strs))
	for _, str := range strs {
		d, err := engine.ParseDate(str)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func intPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

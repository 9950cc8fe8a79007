/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal-typed, pointer-optional) from the
  external API contract (plain floats, omitempty optionals).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type (reused for the policy endpoints)
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/approval"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO is the wire form of an employee profile.
type EmployeeDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Employment string  `json:"employment"`
	HourlyRate float64 `json:"hourly_rate"`

	OvertimeRate      *float64 `json:"overtime_rate,omitempty"`
	OvertimeThreshold *float64 `json:"overtime_threshold,omitempty"`
	LunchBreakMinutes *int     `json:"lunch_break_minutes,omitempty"`
	OvertimeEnabled   bool     `json:"overtime_enabled"`
	HoursPerWeek      float64  `json:"hours_per_week"`
	AnnualSalary      *float64 `json:"annual_salary,omitempty"`

	Holidays []string `json:"holidays,omitempty"`
	PTODays  []string `json:"pto_days,omitempty"`

	SickLeaveBalance float64 `json:"sick_leave_balance"`
	SickLeaveUsed    float64 `json:"sick_leave_used"`
}

// ToProfile converts the DTO to a domain profile.
func (d EmployeeDTO) ToProfile() (*payroll.EmployeeProfile, error) {
	employment, err := payroll.ParseEmploymentType(d.Employment)
	if err != nil {
		return nil, err
	}

	p := &payroll.EmployeeProfile{
		ID:               engine.EmployeeID(d.ID),
		Name:             d.Name,
		Employment:       employment,
		HourlyRate:       decimal.NewFromFloat(d.HourlyRate),
		OvertimeEnabled:  d.OvertimeEnabled,
		HoursPerWeek:     decimal.NewFromFloat(d.HoursPerWeek),
		SickLeaveBalance: decimal.NewFromFloat(d.SickLeaveBalance),
		SickLeaveUsed:    decimal.NewFromFloat(d.SickLeaveUsed),
	}
	if d.OvertimeRate != nil {
		v := decimal.NewFromFloat(*d.OvertimeRate)
		p.OvertimeRate = &v
	}
	if d.OvertimeThreshold != nil {
		v := decimal.NewFromFloat(*d.OvertimeThreshold)
		p.OvertimeThresholdHours = &v
	}
	if d.LunchBreakMinutes != nil {
		v := *d.LunchBreakMinutes
		p.LunchBreakMinutes = &v
	}
	if d.AnnualSalary != nil {
		v := decimal.NewFromFloat(*d.AnnualSalary)
		p.AnnualSalary = &v
	}
	if p.Holidays, err = parseDates(d.Holidays); err != nil {
		return nil, err
	}
	if p.PTODays, err = parseDates(d.PTODays); err != nil {
		return nil, err
	}
	return p, nil
}

func toEmployeeDTO(p *payroll.EmployeeProfile) EmployeeDTO {
	d := EmployeeDTO{
		ID:               string(p.ID),
		Name:             p.Name,
		Employment:       string(p.Employment),
		HourlyRate:       f(p.HourlyRate),
		OvertimeEnabled:  p.OvertimeEnabled,
		HoursPerWeek:     f(p.HoursPerWeek),
		SickLeaveBalance: f(p.SickLeaveBalance),
		SickLeaveUsed:    f(p.SickLeaveUsed),
		Holidays:         formatDates(p.Holidays),
		PTODays:          formatDates(p.PTODays),
	}
	if p.OvertimeRate != nil {
		v := f(*p.OvertimeRate)
		d.OvertimeRate = &v
	}
	if p.OvertimeThresholdHours != nil {
		v := f(*p.OvertimeThresholdHours)
		d.OvertimeThreshold = &v
	}
	if p.LunchBreakMinutes != nil {
		v := *p.LunchBreakMinutes
		d.LunchBreakMinutes = &v
	}
	if p.AnnualSalary != nil {
		v := f(*p.AnnualSalary)
		d.AnnualSalary = &v
	}
	return d
}

// =============================================================================
// ENTRIES AND TASKS
// =============================================================================

// EntryDTO is the wire form of a time entry.
type EntryDTO struct {
	ID              string `json:"id"`
	TaskID          string `json:"task_id"`
	Start           string `json:"start"` // RFC3339
	DurationSeconds int64  `json:"duration_seconds"`
}

func (d EntryDTO) ToEntry() (timesheet.Entry, error) {
	start, err := time.Parse(time.RFC3339, d.Start)
	if err != nil {
		return timesheet.Entry{}, err
	}
	return timesheet.Entry{
		ID:              d.ID,
		TaskID:          engine.TaskID(d.TaskID),
		Start:           start,
		DurationSeconds: d.DurationSeconds,
	}, nil
}

func toEntryDTO(e timesheet.Entry) EntryDTO {
	return EntryDTO{
		ID:              e.ID,
		TaskID:          string(e.TaskID),
		Start:           e.Start.UTC().Format(time.RFC3339),
		DurationSeconds: e.DurationSeconds,
	}
}

// TaskDTO is the wire form of a task directory record.
type TaskDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	ClientID   string `json:"client_id"`
	Completed  bool   `json:"completed"`
}

func (d TaskDTO) ToTask() timesheet.Task {
	return timesheet.Task{
		ID:         engine.TaskID(d.ID),
		EmployeeID: engine.EmployeeID(d.EmployeeID),
		ClientID:   engine.ClientID(d.ClientID),
		Completed:  d.Completed,
	}
}

func toTaskDTO(t timesheet.Task) TaskDTO {
	return TaskDTO{
		ID:         string(t.ID),
		EmployeeID: string(t.EmployeeID),
		ClientID:   string(t.ClientID),
		Completed:  t.Completed,
	}
}

// =============================================================================
// PERIODS AND RUNS
// =============================================================================

// PeriodDTO is a resolved pay period.
type PeriodDTO struct {
	Mode        string `json:"mode"`
	Anchor      string `json:"anchor"`
	Start       string `json:"start"`
	End         string `json:"end"`
	WorkingDays int    `json:"working_days"`
}

// CreateRunRequest opens a payroll run.
type CreateRunRequest struct {
	Mode   string `json:"mode"`
	Anchor string `json:"anchor"` // YYYY-MM-DD, defaults to today

	// Optional employee selection; empty means all profiles.
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

// OverrideRequest edits the sick-hours override for one employee.
type OverrideRequest struct {
	Hours float64 `json:"hours"`
}

// SummaryDTO is the wire form of a per-employee payroll summary.
type SummaryDTO struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Employment string `json:"employment"`

	GrossHours     float64 `json:"gross_hours"`
	LunchDeduction float64 `json:"lunch_deduction"`
	NetHours       float64 `json:"net_hours"`
	PTOUsed        float64 `json:"pto_used"`
	SickLeaveUsed  float64 `json:"sick_leave_used"`
	HolidayHours   float64 `json:"holiday_hours"`
	RegularHours   float64 `json:"regular_hours"`
	OvertimeHours  float64 `json:"overtime_hours"`

	RegularPay  float64 `json:"regular_pay"`
	OvertimePay float64 `json:"overtime_pay"`
	PTOPay      float64 `json:"pto_pay"`
	SickPay     float64 `json:"sick_pay"`
	HolidayPay  float64 `json:"holiday_pay"`
	GrossPay    float64 `json:"gross_pay"`

	SickLeaveAccrued float64 `json:"sick_leave_accrued"`

	HourlyRate        float64 `json:"hourly_rate"`
	OvertimeRate      float64 `json:"overtime_rate"`
	OvertimeThreshold float64 `json:"overtime_threshold"`
}

func toSummaryDTO(s payroll.Summary) SummaryDTO {
	return SummaryDTO{
		EmployeeID: string(s.EmployeeID),
		Name:       s.Name,
		Employment: string(s.Employment),

		GrossHours:     f(s.GrossHours),
		LunchDeduction: f(s.LunchDeduction),
		NetHours:       f(s.NetHours),
		PTOUsed:        f(s.PTOUsed),
		SickLeaveUsed:  f(s.SickLeaveUsed),
		HolidayHours:   f(s.HolidayHours),
		RegularHours:   f(s.RegularHours),
		OvertimeHours:  f(s.OvertimeHours),

		RegularPay:  f(s.RegularPay),
		OvertimePay: f(s.OvertimePay),
		PTOPay:      f(s.PTOPay),
		SickPay:     f(s.SickPay),
		HolidayPay:  f(s.HolidayPay),
		GrossPay:    f(s.GrossPay),

		SickLeaveAccrued: f(s.SickLeaveAccrued),

		HourlyRate:        f(s.HourlyRate),
		OvertimeRate:      f(s.OvertimeRate),
		OvertimeThreshold: f(s.OvertimeThreshold),
	}
}

// TotalsDTO is the wire form of the totals row.
type TotalsDTO struct {
	GrossHours       float64 `json:"gross_hours"`
	NetHours         float64 `json:"net_hours"`
	RegularHours     float64 `json:"regular_hours"`
	OvertimeHours    float64 `json:"overtime_hours"`
	RegularPay       float64 `json:"regular_pay"`
	OvertimePay      float64 `json:"overtime_pay"`
	PTOPay           float64 `json:"pto_pay"`
	SickPay          float64 `json:"sick_pay"`
	HolidayPay       float64 `json:"holiday_pay"`
	GrossPay         float64 `json:"gross_pay"`
	SickLeaveAccrued float64 `json:"sick_leave_accrued"`
	EmployeeCount    int     `json:"employee_count"`
}

func toTotalsDTO(t payroll.Totals) TotalsDTO {
	return TotalsDTO{
		GrossHours:       f(t.GrossHours),
		NetHours:         f(t.NetHours),
		RegularHours:     f(t.RegularHours),
		OvertimeHours:    f(t.OvertimeHours),
		RegularPay:       f(t.RegularPay),
		OvertimePay:      f(t.OvertimePay),
		PTOPay:           f(t.PTOPay),
		SickPay:          f(t.SickPay),
		HolidayPay:       f(t.HolidayPay),
		GrossPay:         f(t.GrossPay),
		SickLeaveAccrued: f(t.SickLeaveAccrued),
		EmployeeCount:    t.EmployeeCount,
	}
}

// DiagnosticDTO reports one excluded time entry.
type DiagnosticDTO struct {
	EntryID string `json:"entry_id"`
	TaskID  string `json:"task_id"`
	Reason  string `json:"reason"`
}

// RunDTO is the full render of a payroll run.
type RunDTO struct {
	ID          string          `json:"id"`
	State       string          `json:"state"`
	Period      PeriodDTO       `json:"period"`
	Summaries   []SummaryDTO    `json:"summaries"`
	Totals      TotalsDTO       `json:"totals"`
	Skipped     []string        `json:"skipped,omitempty"`
	Diagnostics []DiagnosticDTO `json:"diagnostics,omitempty"`
}

// AuditEntryDTO is the wire form of an approval audit record.
type AuditEntryDTO struct {
	ID               string  `json:"id"`
	RunID            string  `json:"run_id"`
	EmployeeID       string  `json:"employee_id"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	SickLeaveUsed    float64 `json:"sick_leave_used"`
	SickLeaveAccrued float64 `json:"sick_leave_accrued"`
	OldBalance       float64 `json:"old_balance"`
	NewBalance       float64 `json:"new_balance"`
	Actor            string  `json:"actor"`
	ApprovedAt       string  `json:"approved_at"`
}

func toAuditEntryDTO(e approval.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:               e.ID,
		RunID:            e.RunID,
		EmployeeID:       string(e.EmployeeID),
		PeriodStart:      e.PeriodStart.String(),
		PeriodEnd:        e.PeriodEnd.String(),
		SickLeaveUsed:    f(e.SickLeaveUsed),
		SickLeaveAccrued: f(e.SickLeaveAccrued),
		OldBalance:       f(e.OldBalance),
		NewBalance:       f(e.NewBalance),
		Actor:            e.Actor,
		ApprovedAt:       e.ApprovedAt.UTC().Format(time.RFC3339),
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// HELPERS
// =============================================================================

func f(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func parseDates(strs []string) ([]engine.Date, error) {
	dates := make([]engine.Date, 0, len(strs))
	for _, s := range strs {
		d, err := engine.ParseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func formatDates(dates []engine.Date) []string {
	strs := make([]string, len(dates))
	for i, d := range dates {
		strs[i] = d.String()
	}
	return strs
}

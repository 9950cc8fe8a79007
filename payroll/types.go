/*
Package payroll implements the pay calculation core of the engine.

PURPOSE:
  Given aggregated hours, an employee profile, and the firm-wide sick
  leave policy, this package produces a complete per-employee pay
  breakdown (regular/overtime/PTO/sick/holiday/gross) plus the sick
  leave accrued for the period.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeProfile: Per-employee pay parameters and sick leave balance
  - SickLeavePolicy: Firm-wide accrual configuration
  - Summary: The full pay breakdown for one employee, one period

DESIGN PRINCIPLES:
  1. Purity: Summarize() is a pure function; nothing here mutates the
     profile store. Only the approval workflow commits balances.
  2. Precision: All hours and money values are decimal.Decimal.
  3. Optional-by-pointer: Defaultable profile parameters are pointers;
     nil means "use the firm default".

SEE ALSO:
  - calculator.go: The pay formula
  - accrual.go: Sick leave accrual policies
  - totals.go: Summing summaries over an employee subset
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// EMPLOYMENT TYPE - Closed enum, branches the pay formula
// =============================================================================

type EmploymentType string

const (
	Hourly     EmploymentType = "hourly"
	Salaried   EmploymentType = "salaried"
	Contractor EmploymentType = "contractor"
)

// ParseEmploymentType validates an employment type string.
func ParseEmploymentType(s string) (EmploymentType, error) {
	switch EmploymentType(s) {
	case Hourly, Salaried, Contractor:
		return EmploymentType(s), nil
	default:
		return "", &InvalidEmploymentTypeError{Type: s}
	}
}

// =============================================================================
// PROFILE DEFAULTS
// =============================================================================

const (
	DefaultOvertimeThresholdHours = 40
	DefaultLunchBreakMinutes      = 30
	HoursPerLeaveDay              = 8 // holiday and PTO days convert at 8h/day
)

// DefaultOvertimeMultiplier is applied to the hourly rate when no explicit
// overtime rate is configured.
var DefaultOvertimeMultiplier = decimal.NewFromFloat(1.5)

// =============================================================================
// EMPLOYEE PROFILE
// =============================================================================

// EmployeeProfile carries everything the calculator needs for one employee.
// The profile is mutated only by the approval workflow (sick leave balance
// commit); all calculation reads it as immutable input.
type EmployeeProfile struct {
	ID         engine.EmployeeID
	Name       string
	Employment EmploymentType

	HourlyRate decimal.Decimal

	// Nil pointers mean "use the default": 1.5x rate, 40h, 30min.
	OvertimeRate           *decimal.Decimal
	OvertimeThresholdHours *decimal.Decimal
	LunchBreakMinutes      *int

	OvertimeEnabled bool
	HoursPerWeek    decimal.Decimal

	// Salaried pay. Nil falls back to HourlyRate * HoursPerWeek * 52.
	AnnualSalary *decimal.Decimal

	// Company holidays and approved PTO days, as calendar dates.
	Holidays []engine.Date
	PTODays  []engine.Date

	// Sick leave state. Balance is never negative after an approval;
	// Used is the period-scoped working value, reset to zero on approval.
	SickLeaveBalance decimal.Decimal
	SickLeaveUsed    decimal.Decimal
}

// EffectiveOvertimeRate returns the configured overtime rate, or 1.5x the
// hourly rate when unset.
func (p *EmployeeProfile) EffectiveOvertimeRate() decimal.Decimal {
	if p.OvertimeRate != nil {
		return *p.OvertimeRate
	}
	return p.HourlyRate.Mul(DefaultOvertimeMultiplier)
}

// EffectiveOvertimeThreshold returns the weekly overtime threshold in hours.
func (p *EmployeeProfile) EffectiveOvertimeThreshold() decimal.Decimal {
	if p.OvertimeThresholdHours != nil {
		return *p.OvertimeThresholdHours
	}
	return decimal.NewFromInt(DefaultOvertimeThresholdHours)
}

// EffectiveLunchMinutes returns the per-day lunch break in minutes.
func (p *EmployeeProfile) EffectiveLunchMinutes() decimal.Decimal {
	if p.LunchBreakMinutes != nil {
		return decimal.NewFromInt(int64(*p.LunchBreakMinutes))
	}
	return decimal.NewFromInt(DefaultLunchBreakMinutes)
}

// EffectiveAnnualSalary returns the configured salary or the rate-derived
// fallback (hourly rate x hours per week x 52).
func (p *EmployeeProfile) EffectiveAnnualSalary() decimal.Decimal {
	if p.AnnualSalary != nil {
		return *p.AnnualSalary
	}
	return p.HourlyRate.Mul(p.HoursPerWeek).Mul(decimal.NewFromInt(52))
}

// HolidayHoursIn returns 8h per company holiday falling in the period.
func (p *EmployeeProfile) HolidayHoursIn(period engine.Period) decimal.Decimal {
	return leaveHoursIn(p.Holidays, period)
}

// PTOHoursIn returns 8h per approved PTO day falling in the period.
func (p *EmployeeProfile) PTOHoursIn(period engine.Period) decimal.Decimal {
	return leaveHoursIn(p.PTODays, period)
}

func leaveHoursIn(days []engine.Date, period engine.Period) decimal.Decimal {
	count := 0
	for _, d := range days {
		if period.Contains(d) {
			count++
		}
	}
	return decimal.NewFromInt(int64(count * HoursPerLeaveDay))
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted state outside an approval commit.
func (p *EmployeeProfile) Clone() *EmployeeProfile {
	cp := *p
	if p.OvertimeRate != nil {
		v := *p.OvertimeRate
		cp.OvertimeRate = &v
	}
	if p.OvertimeThresholdHours != nil {
		v := *p.OvertimeThresholdHours
		cp.OvertimeThresholdHours = &v
	}
	if p.LunchBreakMinutes != nil {
		v := *p.LunchBreakMinutes
		cp.LunchBreakMinutes = &v
	}
	if p.AnnualSalary != nil {
		v := *p.AnnualSalary
		cp.AnnualSalary = &v
	}
	cp.Holidays = append([]engine.Date(nil), p.Holidays...)
	cp.PTODays = append([]engine.Date(nil), p.PTODays...)
	return &cp
}

// =============================================================================
// FIRM SICK LEAVE POLICY
// =============================================================================

// AccrualMethod selects how sick leave accrues during a pay period.
type AccrualMethod string

const (
	// AccrualPerHour: one hour of sick leave per Rate hours worked.
	AccrualPerHour AccrualMethod = "per-hour"

	// AccrualPerPayPeriod: a flat Rate hours per pay period.
	AccrualPerPayPeriod AccrualMethod = "per-pay-period"

	// AccrualLumpSum: granted annually by an out-of-scope process;
	// contributes nothing during a pay period.
	AccrualLumpSum AccrualMethod = "lump-sum"
)

// ParseAccrualMethod validates an accrual method string.
func ParseAccrualMethod(s string) (AccrualMethod, error) {
	switch AccrualMethod(s) {
	case AccrualPerHour, AccrualPerPayPeriod, AccrualLumpSum:
		return AccrualMethod(s), nil
	default:
		return "", &InvalidAccrualMethodError{Method: s}
	}
}

// SickLeavePolicy is the firm-wide accrual configuration. Immutable for
// the duration of one payroll run.
type SickLeavePolicy struct {
	Method AccrualMethod
	Rate   decimal.Decimal

	// MaxAccrual caps the post-accrual balance. Nil means uncapped.
	MaxAccrual *decimal.Decimal
}

// =============================================================================
// PAYROLL SUMMARY - The engine's primary output
// =============================================================================

// Summary is the full pay breakdown for one employee in one period.
// A pure function of its inputs; recomputed on every period or filter
// change and never persisted independently of the approval commit.
type Summary struct {
	EmployeeID engine.EmployeeID
	Name       string
	Employment EmploymentType

	// Hours
	GrossHours     decimal.Decimal
	LunchDeduction decimal.Decimal
	NetHours       decimal.Decimal
	PTOUsed        decimal.Decimal
	SickLeaveUsed  decimal.Decimal
	HolidayHours   decimal.Decimal
	RegularHours   decimal.Decimal
	OvertimeHours  decimal.Decimal

	// Pay
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	PTOPay      decimal.Decimal
	SickPay     decimal.Decimal
	HolidayPay  decimal.Decimal
	GrossPay    decimal.Decimal

	// Accrual for the period (informational until approval commits it)
	SickLeaveAccrued decimal.Decimal

	// Parameters used, echoed for audit and display
	HourlyRate        decimal.Decimal
	OvertimeRate      decimal.Decimal
	OvertimeThreshold decimal.Decimal
}

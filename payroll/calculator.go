/*
calculator.go - Per-employee pay breakdown

PURPOSE:
  The algorithmic heart of the engine. Consumes gross hours, an employee
  profile, and the firm policy, and produces a Summary with every pay
  component. Pure: no side effects, safe to recompute any number of times.

THE FORMULA (in order):
  1. Lunch deduction = lunchMinutes * (grossHours / 8) / 60.
     The deduction scales with the 8-hour-equivalent days IMPLIED by the
     hours logged, not calendar days worked. This approximation is part
     of the output contract and must not be "fixed".
  2. Sick leave used = per-run override if present, else the profile's
     working value. The override always wins.
  3. Holiday hours = 8 * company holidays falling in the period.
  4. Net hours = max(0, gross - lunch).
  5. Overtime split at the weekly threshold, only when enabled.
  6. Pay branches on employment type:
       salaried            flat period pay (annual / 52|26|12), overtime
                           still paid on top, PTO/sick/holiday pay zero
                           (subsumed by salary) though holiday HOURS are
                           still reported
       hourly, contractor  rate * hours for every component
  7. Gross pay = regular + overtime + PTO + sick + holiday pay.

SEE ALSO:
  - accrual.go: the SickLeaveAccrued figure
  - approval/run.go: override ownership and the balance commit
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

var (
	eight = decimal.NewFromInt(8)
	sixty = decimal.NewFromInt(60)
)

// Calculator computes summaries for one (mode, period, policy) run.
type Calculator struct {
	Mode   engine.ViewMode
	Period engine.Period
	Policy SickLeavePolicy
}

// Summarize produces the full pay breakdown for one employee.
// sickOverride, when non-nil, replaces the profile's working sick-leave
// value for this run only; the profile itself is never touched here.
func (c *Calculator) Summarize(p *EmployeeProfile, grossHours decimal.Decimal, sickOverride *decimal.Decimal) Summary {
	rate := p.HourlyRate
	otRate := p.EffectiveOvertimeRate()
	threshold := p.EffectiveOvertimeThreshold()

	// 1. Lunch deduction paced by implied 8h days.
	lunch := p.EffectiveLunchMinutes().Mul(grossHours.Div(eight)).Div(sixty)

	// 2. Sick leave used, override first.
	sickUsed := p.SickLeaveUsed
	if sickOverride != nil {
		sickUsed = *sickOverride
	}

	// 3. Holiday and PTO hours by date intersection.
	holidayHours := p.HolidayHoursIn(c.Period)
	ptoUsed := p.PTOHoursIn(c.Period)

	// 4. Net hours, floored at zero.
	net := engine.ClampNonNegative(grossHours.Sub(lunch))

	// 5. Regular/overtime split.
	regularHours := net
	overtimeHours := decimal.Zero
	if p.OvertimeEnabled && net.GreaterThan(threshold) {
		regularHours = threshold
		overtimeHours = net.Sub(threshold)
	}

	// 6. Pay by employment type.
	var regularPay, overtimePay, ptoPay, sickPay, holidayPay decimal.Decimal
	switch p.Employment {
	case Salaried:
		// Flat period pay, independent of hours logged. Overtime is still
		// paid on top; PTO/sick/holiday pay are subsumed by the salary.
		regularPay = c.periodSalary(p)
		overtimePay = overtimeHours.Mul(otRate)
	case Hourly, Contractor:
		regularPay = regularHours.Mul(rate)
		overtimePay = overtimeHours.Mul(otRate)
		ptoPay = ptoUsed.Mul(rate)
		sickPay = sickUsed.Mul(rate)
		holidayPay = holidayHours.Mul(rate)
	default:
		// Unknown types pay as hourly rather than silently paying nothing.
		regularPay = regularHours.Mul(rate)
		overtimePay = overtimeHours.Mul(otRate)
		ptoPay = ptoUsed.Mul(rate)
		sickPay = sickUsed.Mul(rate)
		holidayPay = holidayHours.Mul(rate)
	}

	// 7. Gross pay is always the exact sum of the five components.
	grossPay := regularPay.Add(overtimePay).Add(ptoPay).Add(sickPay).Add(holidayPay)

	accrued := AccruedSickLeave(grossHours, c.Policy, p.SickLeaveBalance)

	return Summary{
		EmployeeID: p.ID,
		Name:       p.Name,
		Employment: p.Employment,

		GrossHours:     grossHours,
		LunchDeduction: lunch,
		NetHours:       net,
		PTOUsed:        ptoUsed,
		SickLeaveUsed:  sickUsed,
		HolidayHours:   holidayHours,
		RegularHours:   regularHours,
		OvertimeHours:  overtimeHours,

		RegularPay:  regularPay,
		OvertimePay: overtimePay,
		PTOPay:      ptoPay,
		SickPay:     sickPay,
		HolidayPay:  holidayPay,
		GrossPay:    grossPay,

		SickLeaveAccrued: accrued,

		HourlyRate:        rate,
		OvertimeRate:      otRate,
		OvertimeThreshold: threshold,
	}
}

// periodSalary divides the annual salary by the pay periods per year for
// the run's view mode (52 weekly, 26 biweekly, 12 monthly).
func (c *Calculator) periodSalary(p *EmployeeProfile) decimal.Decimal {
	return p.EffectiveAnnualSalary().Div(decimal.NewFromInt(c.Mode.PeriodsPerYear()))
}

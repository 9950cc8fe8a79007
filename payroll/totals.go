package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// TOTALS - Column sums over a selectable employee subset
// =============================================================================

// Totals is the column-wise sum of a set of summaries. A pure projection;
// it may be recomputed concurrently with anything since it shares no
// mutable state.
type Totals struct {
	GrossHours     decimal.Decimal
	LunchDeduction decimal.Decimal
	NetHours       decimal.Decimal
	PTOUsed        decimal.Decimal
	SickLeaveUsed  decimal.Decimal
	HolidayHours   decimal.Decimal
	RegularHours   decimal.Decimal
	OvertimeHours  decimal.Decimal

	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	PTOPay      decimal.Decimal
	SickPay     decimal.Decimal
	HolidayPay  decimal.Decimal
	GrossPay    decimal.Decimal

	SickLeaveAccrued decimal.Decimal

	EmployeeCount int
}

// SumSummaries reduces summaries to totals. A nil include set sums all;
// otherwise only employees present in the set contribute.
func SumSummaries(summaries []Summary, include map[engine.EmployeeID]bool) Totals {
	var t Totals
	for _, s := range summaries {
		if include != nil && !include[s.EmployeeID] {
			continue
		}
		t.GrossHours = t.GrossHours.Add(s.GrossHours)
		t.LunchDeduction = t.LunchDeduction.Add(s.LunchDeduction)
		t.NetHours = t.NetHours.Add(s.NetHours)
		t.PTOUsed = t.PTOUsed.Add(s.PTOUsed)
		t.SickLeaveUsed = t.SickLeaveUsed.Add(s.SickLeaveUsed)
		t.HolidayHours = t.HolidayHours.Add(s.HolidayHours)
		t.RegularHours = t.RegularHours.Add(s.RegularHours)
		t.OvertimeHours = t.OvertimeHours.Add(s.OvertimeHours)

		t.RegularPay = t.RegularPay.Add(s.RegularPay)
		t.OvertimePay = t.OvertimePay.Add(s.OvertimePay)
		t.PTOPay = t.PTOPay.Add(s.PTOPay)
		t.SickPay = t.SickPay.Add(s.SickPay)
		t.HolidayPay = t.HolidayPay.Add(s.HolidayPay)
		t.GrossPay = t.GrossPay.Add(s.GrossPay)

		t.SickLeaveAccrued = t.SickLeaveAccrued.Add(s.SickLeaveAccrued)
		t.EmployeeCount++
	}
	return t
}

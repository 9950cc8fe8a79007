/*
accrual.go - Sick leave accrual policies

PURPOSE:
  Computes the sick leave earned during a pay period under the firm's
  configured policy, and enforces the balance cap. The result is
  informational until the approval workflow commits it.

POLICIES:
  per-hour        accrued = grossHours / Rate
                  (Rate is "hours worked per 1 hour of sick leave earned")
  per-pay-period  accrued = Rate, flat, independent of hours
  lump-sum        accrued = 0 here; granted by an annual process

DEGRADED RATES:
  A zero or negative Rate degrades to zero accrual instead of erroring.
  Misconfiguration must never crash a payroll run or divide by zero.

CAP:
  With MaxAccrual = M, the accrued amount is clamped so that
  balance + accrued <= M, floored at zero. The cap law: after approval,
  newBalance <= M whenever the pre-approval balance was <= M.
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// AccruedSickLeave returns the hours of sick leave earned for the period,
// after cap enforcement against the employee's current balance.
func AccruedSickLeave(grossHours decimal.Decimal, policy SickLeavePolicy, currentBalance decimal.Decimal) decimal.Decimal {
	accrued := rawAccrual(grossHours, policy)

	if policy.MaxAccrual != nil {
		max := *policy.MaxAccrual
		if currentBalance.Add(accrued).GreaterThan(max) {
			accrued = engine.ClampNonNegative(max.Sub(currentBalance))
		}
	}
	return accrued
}

func rawAccrual(grossHours decimal.Decimal, policy SickLeavePolicy) decimal.Decimal {
	// Zero/negative rates degrade to zero accrual. Guards the per-hour
	// division and keeps bad configuration from erroring a whole run.
	if !policy.Rate.IsPositive() {
		return decimal.Zero
	}

	switch policy.Method {
	case AccrualPerHour:
		return grossHours.Div(policy.Rate)
	case AccrualPerPayPeriod:
		return policy.Rate
	case AccrualLumpSum:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

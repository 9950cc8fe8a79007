/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON sick-leave policy definitions into payroll.SickLeavePolicy
  values. Firm administrators configure the policy without code changes;
  the factory validates structure and applies defaults.

JSON SCHEMA:
  {
    "accrual_method": "per-hour",   // per-hour | per-pay-period | lump-sum
    "accrual_rate": 30,             // per-hour: hours worked per 1h earned
    "max_accrual": 40               // optional balance cap, omit for none
  }

VALIDATION:
  An unknown accrual method is an error. A zero or negative rate is NOT:
  the engine degrades it to zero accrual at calculation time, so stored
  configuration can never crash a payroll run.

SEE ALSO:
  - payroll/accrual.go: the rate semantics
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// PolicyJSON is the JSON representation of the firm sick leave policy.
type PolicyJSON struct {
	AccrualMethod string   `json:"accrual_method"`
	AccrualRate   float64  `json:"accrual_rate"`
	MaxAccrual    *float64 `json:"max_accrual,omitempty"`
}

// PolicyFactory converts policy JSON to domain values.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy converts a JSON document to a SickLeavePolicy.
func (f *PolicyFactory) ParsePolicy(data []byte) (payroll.SickLeavePolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return payroll.SickLeavePolicy{}, fmt.Errorf("invalid policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts an already-decoded PolicyJSON to a SickLeavePolicy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (payroll.SickLeavePolicy, error) {
	method, err := payroll.ParseAccrualMethod(pj.AccrualMethod)
	if err != nil {
		return payroll.SickLeavePolicy{}, err
	}

	policy := payroll.SickLeavePolicy{
		Method: method,
		Rate:   decimal.NewFromFloat(pj.AccrualRate),
	}
	if pj.MaxAccrual != nil {
		v := decimal.NewFromFloat(*pj.MaxAccrual)
		policy.MaxAccrual = &v
	}
	return policy, nil
}

// ToJSON converts a SickLeavePolicy back to its JSON representation.
func (f *PolicyFactory) ToJSON(p payroll.SickLeavePolicy) PolicyJSON {
	pj := PolicyJSON{
		AccrualMethod: string(p.Method),
	}
	pj.AccrualRate, _ = p.Rate.Float64()
	if p.MaxAccrual != nil {
		v, _ := p.MaxAccrual.Float64()
		pj.MaxAccrual = &v
	}
	return pj
}

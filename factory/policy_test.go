package factory_test

import (
	"errors"
	"testing"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

func TestParsePolicy_ValidDocument(t *testing.T) {
	f := factory.NewPolicyFactory()

	policy, err := f.ParsePolicy([]byte(`{
		"accrual_method": "per-hour",
		"accrual_rate": 30,
		"max_accrual": 48
	}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if policy.Method != payroll.AccrualPerHour {
		t.Errorf("expected per-hour, got %s", policy.Method)
	}
	if policy.Rate.String() != "30" {
		t.Errorf("rate: %s", policy.Rate)
	}
	if policy.MaxAccrual == nil || policy.MaxAccrual.String() != "48" {
		t.Errorf("cap: %v", policy.MaxAccrual)
	}
}

func TestParsePolicy_OmittedCapMeansUncapped(t *testing.T) {
	f := factory.NewPolicyFactory()
	policy, err := f.ParsePolicy([]byte(`{"accrual_method": "per-pay-period", "accrual_rate": 2}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if policy.MaxAccrual != nil {
		t.Errorf("expected nil cap, got %v", policy.MaxAccrual)
	}
}

func TestParsePolicy_UnknownMethodRejected(t *testing.T) {
	f := factory.NewPolicyFactory()
	_, err := f.ParsePolicy([]byte(`{"accrual_method": "hourly-magic", "accrual_rate": 1}`))
	if !errors.Is(err, payroll.ErrInvalidAccrualMethod) {
		t.Errorf("expected ErrInvalidAccrualMethod, got %v", err)
	}
}

func TestParsePolicy_ZeroRateAccepted(t *testing.T) {
	// A zero rate is stored as-is; the engine degrades it to no accrual
	// rather than rejecting the configuration.
	f := factory.NewPolicyFactory()
	policy, err := f.ParsePolicy([]byte(`{"accrual_method": "per-hour", "accrual_rate": 0}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !policy.Rate.IsZero() {
		t.Errorf("expected zero rate, got %s", policy.Rate)
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewPolicyFactory()

	original, err := f.ParsePolicy([]byte(`{"accrual_method": "per-hour", "accrual_rate": 30, "max_accrual": 40}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	pj := f.ToJSON(original)
	back, err := f.FromJSON(pj)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if back.Method != original.Method || !back.Rate.Equal(original.Rate) {
		t.Errorf("round trip drifted: %+v vs %+v", back, original)
	}
	if back.MaxAccrual == nil || !back.MaxAccrual.Equal(*original.MaxAccrual) {
		t.Errorf("cap drifted: %v", back.MaxAccrual)
	}
}

package engine_test

import (
	"testing"

	"github.com/warp/payroll-engine/engine"
)

func TestParseDecimalOrZero(t *testing.T) {
	if got := engine.ParseDecimalOrZero("16.5"); got.String() != "16.5" {
		t.Errorf("expected 16.5, got %s", got)
	}
	// Corrupt input degrades to zero rather than failing the read.
	if got := engine.ParseDecimalOrZero("not-a-number"); !got.IsZero() {
		t.Errorf("expected zero for corrupt input, got %s", got)
	}
	if got := engine.ParseDecimalOrZero(""); !got.IsZero() {
		t.Errorf("expected zero for empty input, got %s", got)
	}
}

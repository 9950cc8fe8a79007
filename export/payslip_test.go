package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/payroll"
)

func TestWritePayslipPDF_ProducesDocument(t *testing.T) {
	period := engine.Resolve(engine.ModeWeek, engine.NewDate(2026, time.March, 4))
	s := payroll.Summary{
		EmployeeID: "alice",
		Name:       "Alice",
		Employment: payroll.Hourly,
		GrossHours: dec(40),
		NetHours:   dec(37.5),
		RegularPay: dec(1125),
		GrossPay:   dec(1365),
		HourlyRate: dec(30),
	}

	var buf bytes.Buffer
	if err := export.WritePayslipPDF(&buf, s, period); err != nil {
		t.Fatalf("payslip rendering failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty payslip document")
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output is not a PDF document")
	}
}

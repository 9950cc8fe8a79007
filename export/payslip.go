package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
)

// WritePayslipPDF renders a one-page payslip for a single employee's
// summary. The PDF is informational; the CSV report remains the
// authoritative export format.
func WritePayslipPDF(w io.Writer, s payroll.Summary, period engine.Period) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", s.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employment: %s", s.Employment))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", period.Start, period.End))
	pdf.Ln(10)

	line := func(label string, hours decimal.Decimal, pay decimal.Decimal) {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s h / %s", label, hours.StringFixed(1), pay.StringFixed(2)))
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Hours and pay")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)

	line("Regular", s.RegularHours, s.RegularPay)
	line("Overtime", s.OvertimeHours, s.OvertimePay)
	line("PTO", s.PTOUsed, s.PTOPay)
	line("Sick", s.SickLeaveUsed, s.SickPay)
	line("Holiday", s.HolidayHours, s.HolidayPay)
	pdf.Ln(3)

	pdf.Cell(0, 8, fmt.Sprintf("Gross hours: %s (lunch -%s, net %s)",
		s.GrossHours.StringFixed(1), s.LunchDeduction.StringFixed(1), s.NetHours.StringFixed(1)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Sick leave accrued: %s", s.SickLeaveAccrued.StringFixed(1)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Gross pay: %s", s.GrossPay.StringFixed(2)))

	return pdf.Output(w)
}

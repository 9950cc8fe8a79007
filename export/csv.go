/*
Package export renders payroll runs for external consumers.

csv.go - Payroll CSV export

PURPOSE:
  Produces the payroll report as CSV text. The layout is the one
  bit-exact contract in the system: the hosting dashboard and downstream
  spreadsheets both parse it positionally, so the row order, labels, and
  number formats below must not drift.

LAYOUT:
  Header:  Client/Summary, <employee names...>, Total
  Then one row per client with hours per employee (two decimals),
  a blank separator row, then the summary block in this exact order:

    GROSS HOURS
    Less: Lunch          (parenthesized)
    PTO Used             (parenthesized if nonzero, else literal 0.0)
    Sick Leave Used
    Holiday Pay          (holiday HOURS - label kept for compatibility)
    <blank>
    NET HOURS
    Regular (≤40)
    Overtime (>40)
    <blank>
    Regular Pay
    Overtime Pay
    PTO Pay
    Sick Pay
    Holiday Pay
    <blank>
    Sick Leave Accrued
    <blank>
    GROSS PAY

  Hour cells use one decimal place, currency cells two. Each row ends
  with the total over all employee columns, formatted like its cells.
*/
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// cell formatters

func hours1(d decimal.Decimal) string { return d.StringFixed(1) }
func hours2(d decimal.Decimal) string { return d.StringFixed(2) }
func money2(d decimal.Decimal) string { return d.StringFixed(2) }

// paren renders a deduction cell: one-decimal hours in parentheses.
func paren(d decimal.Decimal) string { return "(" + d.StringFixed(1) + ")" }

// ptoCell is parenthesized only when nonzero; a literal 0.0 otherwise.
func ptoCell(d decimal.Decimal) string {
	if d.IsZero() {
		return "0.0"
	}
	return paren(d)
}

// WritePayroll writes the payroll report for one run.
func WritePayroll(w io.Writer, agg timesheet.Aggregate, summaries []payroll.Summary) error {
	cw := csv.NewWriter(w)

	names := make([]string, len(summaries))
	for i, s := range summaries {
		names[i] = s.Name
	}

	// Header
	header := append([]string{"Client/Summary"}, names...)
	header = append(header, "Total")
	if err := cw.Write(header); err != nil {
		return err
	}

	// Client rows, sorted for a stable layout.
	clients := agg.Clients()
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })
	for _, client := range clients {
		row := []string{string(client)}
		total := decimal.Zero
		for _, s := range summaries {
			h := clientHours(agg, s.EmployeeID, client)
			total = total.Add(h)
			row = append(row, hours2(h))
		}
		row = append(row, hours2(total))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	blank := func() error { return cw.Write([]string{""}) }
	row := func(label string, format func(decimal.Decimal) string, pick func(payroll.Summary) decimal.Decimal) error {
		cells := []string{label}
		total := decimal.Zero
		for _, s := range summaries {
			v := pick(s)
			total = total.Add(v)
			cells = append(cells, format(v))
		}
		cells = append(cells, format(total))
		return cw.Write(cells)
	}

	steps := []func() error{
		blank,
		func() error {
			return row("GROSS HOURS", hours1, func(s payroll.Summary) decimal.Decimal { return s.GrossHours })
		},
		func() error {
			return row("Less: Lunch", paren, func(s payroll.Summary) decimal.Decimal { return s.LunchDeduction })
		},
		func() error {
			return row("PTO Used", ptoCell, func(s payroll.Summary) decimal.Decimal { return s.PTOUsed })
		},
		func() error {
			return row("Sick Leave Used", hours1, func(s payroll.Summary) decimal.Decimal { return s.SickLeaveUsed })
		},
		func() error {
			return row("Holiday Pay", hours1, func(s payroll.Summary) decimal.Decimal { return s.HolidayHours })
		},
		blank,
		func() error {
			return row("NET HOURS", hours1, func(s payroll.Summary) decimal.Decimal { return s.NetHours })
		},
		func() error {
			return row("Regular (≤40)", hours1, func(s payroll.Summary) decimal.Decimal { return s.RegularHours })
		},
		func() error {
			return row("Overtime (>40)", hours1, func(s payroll.Summary) decimal.Decimal { return s.OvertimeHours })
		},
		blank,
		func() error {
			return row("Regular Pay", money2, func(s payroll.Summary) decimal.Decimal { return s.RegularPay })
		},
		func() error {
			return row("Overtime Pay", money2, func(s payroll.Summary) decimal.Decimal { return s.OvertimePay })
		},
		func() error {
			return row("PTO Pay", money2, func(s payroll.Summary) decimal.Decimal { return s.PTOPay })
		},
		func() error {
			return row("Sick Pay", money2, func(s payroll.Summary) decimal.Decimal { return s.SickPay })
		},
		func() error {
			return row("Holiday Pay", money2, func(s payroll.Summary) decimal.Decimal { return s.HolidayPay })
		},
		blank,
		func() error {
			return row("Sick Leave Accrued", hours1, func(s payroll.Summary) decimal.Decimal { return s.SickLeaveAccrued })
		},
		blank,
		func() error {
			return row("GROSS PAY", money2, func(s payroll.Summary) decimal.Decimal { return s.GrossPay })
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// PayrollCSV renders the report to a string.
func PayrollCSV(agg timesheet.Aggregate, summaries []payroll.Summary) (string, error) {
	var sb strings.Builder
	if err := WritePayroll(&sb, agg, summaries); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func clientHours(agg timesheet.Aggregate, emp engine.EmployeeID, client engine.ClientID) decimal.Decimal {
	if perClient, ok := agg.ByClient[emp]; ok {
		if h, ok := perClient[client]; ok {
			return h
		}
	}
	return decimal.Zero
}

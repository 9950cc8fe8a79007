/*
period.go - Pay period resolution and navigation

PURPOSE:
  Turns a (ViewMode, anchor date) pair into a concrete inclusive date
  interval, and shifts the anchor for period navigation. Every payroll
  run starts here: the same anchor must always resolve to the same
  interval, no matter how many times it is recomputed.

RESOLUTION RULES:
  week:     ISO week containing the anchor, Monday through Sunday
  biweekly: the anchor's ISO week extended through the following week's
            Sunday - always 14 days, Monday-anchored
  month:    calendar month containing the anchor

NAVIGATION:
  previous/next move the anchor by one unit (1 week, 2 weeks, 1 month).
  fast previous/next jump 4 weeks, 8 weeks, or 6 months.
  Month shifts navigate from the first of the month, so a day-29..31
  anchor cannot normalize past (or short of) the target month.
  today snaps the anchor back to the current day.

WORKING DAYS:
  WorkingDays counts Mon-Fri days in the interval. Used by the hosting
  dashboard to pace lunch deductions across the period.

SEE ALSO:
  - time.go: Date arithmetic
  - payroll/calculator.go: consumes Period + ViewMode for pay math
*/
package engine

// =============================================================================
// VIEW MODE - Closed enum of period kinds
// =============================================================================

// ViewMode selects how the pay period is derived from the anchor date.
// It is a closed set: every switch over ViewMode in this repository is
// exhaustive, so adding a mode is a compile-visible change.
type ViewMode string

const (
	ModeWeek     ViewMode = "week"
	ModeBiweekly ViewMode = "biweekly"
	ModeMonth    ViewMode = "month"
)

// ParseViewMode validates a mode string.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ModeWeek, ModeBiweekly, ModeMonth:
		return ViewMode(s), nil
	default:
		return "", &InvalidViewModeError{Mode: s}
	}
}

// PeriodsPerYear returns the annual-salary divisor for the mode
// (52 weekly, 26 biweekly, 12 monthly pay periods per year).
func (m ViewMode) PeriodsPerYear() int64 {
	switch m {
	case ModeWeek:
		return 52
	case ModeBiweekly:
		return 26
	case ModeMonth:
		return 12
	default:
		return 52
	}
}

// =============================================================================
// PERIOD - Inclusive date interval
// =============================================================================

// Period is the inclusive [Start, End] interval of a payroll run.
// Never persisted; always recomputed from (mode, anchor).
type Period struct {
	Start Date
	End   Date
}

// Contains reports whether the day falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of calendar days in the interval.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// WorkingDays counts the Mon-Fri days in the interval.
func (p Period) WorkingDays() int {
	count := 0
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if d.IsWorkday() {
			count++
		}
	}
	return count
}

// =============================================================================
// RESOLUTION - (mode, anchor) -> Period
// =============================================================================

// Resolve maps an anchor date to its pay period. Idempotent: the same
// (mode, anchor) always yields the same interval.
func Resolve(mode ViewMode, anchor Date) Period {
	switch mode {
	case ModeWeek:
		monday := StartOfISOWeek(anchor)
		return Period{Start: monday, End: monday.AddDays(6)}
	case ModeBiweekly:
		monday := StartOfISOWeek(anchor)
		return Period{Start: monday, End: monday.AddDays(13)}
	case ModeMonth:
		return Period{
			Start: StartOfMonth(anchor.Year(), anchor.Month()),
			End:   EndOfMonth(anchor.Year(), anchor.Month()),
		}
	default:
		monday := StartOfISOWeek(anchor)
		return Period{Start: monday, End: monday.AddDays(6)}
	}
}

// =============================================================================
// NAVIGATION - Anchor shifting
// =============================================================================

// NavOp is a period navigation operation.
type NavOp string

const (
	NavPrevious     NavOp = "previous"
	NavNext         NavOp = "next"
	NavFastPrevious NavOp = "fast_previous" // 4w / 8w / 6mo back
	NavFastNext     NavOp = "fast_next"     // 4w / 8w / 6mo forward
	NavToday        NavOp = "today"
)

// ParseNavOp validates a navigation operation string.
func ParseNavOp(s string) (NavOp, error) {
	switch NavOp(s) {
	case NavPrevious, NavNext, NavFastPrevious, NavFastNext, NavToday:
		return NavOp(s), nil
	default:
		return "", &InvalidNavOpError{Op: s}
	}
}

// Navigate shifts the anchor by the operation's unit count for the mode.
// One unit is 1 week / 2 weeks / 1 month; fast ops jump 4 weeks, 8 weeks
// or 6 months. Month shifts start from the first of the month: AddDate
// normalizes Jan 31 + 1 month into March, which would skip February.
func Navigate(mode ViewMode, anchor Date, op NavOp) Date {
	if op == NavToday {
		return Today()
	}

	dir, fast := 0, false
	switch op {
	case NavPrevious:
		dir = -1
	case NavNext:
		dir = 1
	case NavFastPrevious:
		dir, fast = -1, true
	case NavFastNext:
		dir, fast = 1, true
	}

	switch mode {
	case ModeBiweekly:
		if fast {
			return anchor.AddWeeks(8 * dir)
		}
		return anchor.AddWeeks(2 * dir)
	case ModeMonth:
		first := StartOfMonth(anchor.Year(), anchor.Month())
		if fast {
			return first.AddMonths(6 * dir)
		}
		return first.AddMonths(dir)
	default:
		if fast {
			return anchor.AddWeeks(4 * dir)
		}
		return anchor.AddWeeks(dir)
	}
}

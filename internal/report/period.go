package report

import (
	"fmt"

	"tally/internal/core"
)

// Period is a named lookback window for the analytics view.
type Period string

const (
	Last7Days  Period = "7d"
	Last30Days Period = "30d"
	Last90Days Period = "90d"
	AllTime    Period = "all"
)

// ParsePeriod maps a query value onto the four known windows.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Last7Days, Last30Days, Last90Days, AllTime:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Resolve returns the window's start date. The fixed windows count back
// from today; AllTime starts at the oldest date present in the snapshot,
// so it moves as the ledger changes. The end of every window is today.
//
// AllTime over an empty snapshot resolves to today; callers render the
// empty state before any period math matters.
func (p Period) Resolve(today core.Date, records []core.Record) core.Date {
	switch p {
	case Last7Days:
		return today.AddDays(-7)
	case Last30Days:
		return today.AddDays(-30)
	case Last90Days:
		return today.AddDays(-90)
	}
	start := today
	for _, r := range records {
		if r.Date.Before(start.Time) {
			start = r.Date
		}
	}
	return start
}

// Window filters the snapshot to records dated inside [Resolve, today].
// Category and amount predicates are wide open: a period narrows by date
// only.
func (p Period) Window(today core.Date, records []core.Record) []core.Record {
	start := p.Resolve(today, records)
	var out []core.Record
	for _, r := range records {
		if r.Date.Before(start.Time) || r.Date.After(today.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

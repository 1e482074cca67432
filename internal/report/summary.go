package report

import "tally/internal/core"

// Summary is the metric block of the analytics view.
type Summary struct {
	Total core.Money
	// AverageDaily divides the total by the number of distinct dates that
	// actually carry records, not by the calendar length of the period.
	// A sparse month with two spending days divides by two.
	AverageDaily core.Money
	MaxSingle    core.Money
	MinSingle    core.Money
	Transactions int
	Categories   int
}

// Overview computes the period summary. The second result is false for
// an empty input, which callers render as the period's empty state.
func Overview(records []core.Record) (Summary, bool) {
	if len(records) == 0 {
		return Summary{}, false
	}
	s := Summary{
		Transactions: len(records),
		MaxSingle:    records[0].Amount,
		MinSingle:    records[0].Amount,
	}
	days := make(map[core.Date]struct{})
	cats := make(map[core.Category]struct{})
	for _, r := range records {
		s.Total.Cents += r.Amount.Cents
		if r.Amount.Cents > s.MaxSingle.Cents {
			s.MaxSingle = r.Amount
		}
		if r.Amount.Cents < s.MinSingle.Cents {
			s.MinSingle = r.Amount
		}
		days[r.Date] = struct{}{}
		cats[r.Category] = struct{}{}
	}
	s.AverageDaily = core.Money{Cents: divRound(s.Total.Cents, int64(len(days)))}
	s.Categories = len(cats)
	return s, true
}

package report

import "tally/internal/core"

// Stats summarizes a filtered record set for the history view. There is
// no minimum field; only the period overview carries one.
type Stats struct {
	Total   core.Money
	Average core.Money
	Maximum core.Money
	Count   int
}

// Compute returns the summary statistics for a record set. The second
// result is false for an empty set: there is no statistics row to render
// and no division by zero to perform.
func Compute(records []core.Record) (Stats, bool) {
	if len(records) == 0 {
		return Stats{}, false
	}
	s := Stats{Count: len(records)}
	for _, r := range records {
		s.Total.Cents += r.Amount.Cents
		if r.Amount.Cents > s.Maximum.Cents {
			s.Maximum = r.Amount
		}
	}
	s.Average = core.Money{Cents: divRound(s.Total.Cents, int64(s.Count))}
	return s, true
}

// divRound divides positive cents half-up to the nearest cent.
func divRound(total, n int64) int64 {
	return (total + n/2) / n
}

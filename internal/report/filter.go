// Package report turns a ledger snapshot into the derived views the UI
// renders: filtered subsets, summary statistics, category totals, daily
// series, and period overviews.
//
// Every function here is pure. Callers pass the record snapshot and,
// where period math is involved, an explicit today; nothing reads the
// clock or touches storage.
package report

import "tally/internal/core"

// Filter narrows a record collection for display. The three predicates
// are ANDed and every bound is inclusive.
type Filter struct {
	Start core.Date
	End   core.Date
	// Categories lists the allowed labels. An empty set admits nothing,
	// which is the defined result of deselecting every category.
	Categories []core.Category
	MinCents   int64
	MaxCents   int64
}

// Apply returns the subsequence of records matching the filter, in input
// order. An inverted date interval (Start after End) matches nothing;
// that is a defined outcome, not an error.
func Apply(records []core.Record, f Filter) []core.Record {
	if len(f.Categories) == 0 || f.Start.After(f.End.Time) {
		return nil
	}
	allowed := make(map[core.Category]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		allowed[c] = struct{}{}
	}
	var out []core.Record
	for _, r := range records {
		if r.Date.Before(f.Start.Time) || r.Date.After(f.End.Time) {
			continue
		}
		if _, ok := allowed[r.Category]; !ok {
			continue
		}
		if r.Amount.Cents < f.MinCents || r.Amount.Cents > f.MaxCents {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Bounds reports the extremes the filter widgets initialize from: the
// oldest and newest dates and the smallest and largest amounts present.
// The second result is false when the snapshot is empty.
type Bounds struct {
	MinDate   core.Date
	MaxDate   core.Date
	MinAmount core.Money
	MaxAmount core.Money
}

func DataBounds(records []core.Record) (Bounds, bool) {
	if len(records) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinDate:   records[0].Date,
		MaxDate:   records[0].Date,
		MinAmount: records[0].Amount,
		MaxAmount: records[0].Amount,
	}
	for _, r := range records[1:] {
		if r.Date.Before(b.MinDate.Time) {
			b.MinDate = r.Date
		}
		if r.Date.After(b.MaxDate.Time) {
			b.MaxDate = r.Date
		}
		if r.Amount.Cents < b.MinAmount.Cents {
			b.MinAmount = r.Amount
		}
		if r.Amount.Cents > b.MaxAmount.Cents {
			b.MaxAmount = r.Amount
		}
	}
	return b, true
}

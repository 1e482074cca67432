// Package mirror defines the outbound port for keeping an external
// copy of the ledger in sync.
package mirror

import (
	"context"
	"fmt"

	"tally/internal/core"
)

// Entry is one row of the external copy. Deletions are mirrored as
// voiding entries carrying the negated amount, so the copy's running
// sum tracks the ledger without rewriting history.
type Entry struct {
	RecordID int64
	Date     core.Date
	Category core.Category
	Cents    int64
	Note     string
}

// Writer appends entries to the external copy.
type Writer interface {
	Append(ctx context.Context, entry Entry) (rowRef string, err error)
}

// FromRecord builds the entry mirroring a newly created record.
func FromRecord(record core.Record) Entry {
	return Entry{
		RecordID: record.ID,
		Date:     record.Date,
		Category: record.Category,
		Cents:    record.Amount.Cents,
		Note:     record.Note,
	}
}

// Voiding builds the entry that cancels a deleted record.
func Voiding(record core.Record) Entry {
	return Entry{
		RecordID: record.ID,
		Date:     record.Date,
		Category: record.Category,
		Cents:    -record.Amount.Cents,
		Note:     fmt.Sprintf("voids #%d", record.ID),
	}
}

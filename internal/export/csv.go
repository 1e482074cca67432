// Package export renders ledger records for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tally/internal/core"
)

var csvHeader = []string{"id", "date", "category", "amount", "note"}

// WriteCSV streams records to w as CSV, header row first. Amounts are
// decimal strings with two fraction digits, dates ISO-8601.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.FormatInt(record.ID, 10),
			record.Date.String(),
			string(record.Category),
			record.Amount.String(),
			record.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for record %d: %w", record.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename returns the download name for an export generated on the
// given date, e.g. expenses_20240115.csv.
func Filename(today core.Date) string {
	return "expenses_" + today.Format("20060102") + ".csv"
}

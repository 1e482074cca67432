package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tally/internal/core"
	"tally/internal/export"
	"tally/internal/log"
	"tally/internal/report"
)

// handleRecords dispatches the record collection endpoint: POST
// creates, DELETE removes.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r)
	default:
		MethodNotAllowedError("POST, DELETE").Write(w)
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "parse form failed",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	date := core.Today(time.Now())
	if v := sanitizeInput(r.Form.Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("Invalid date").Write(w)
			return
		}
		date = parsed
	}

	category, err := core.ParseCategory(cleanCategoryLabel(sanitizeInput(r.Form.Get("category"))))
	if err != nil {
		UnprocessableEntityError("Unknown category").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	record := core.Record{
		Date:     date,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Note:     sanitizeInput(r.Form.Get("note")),
	}

	stored, err := s.ledger.CreateRecord(ctx, record)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(ctx, "failed to save record",
			log.FieldError, err.Error(),
			log.FieldCategory, category.String(),
			log.FieldAmountCents, cents)
		InternalServerError("Error saving record").Write(w)
		return
	}

	s.metrics.recordsCreated.Add(1)

	NewResponse().
		TriggerFormReset().
		TriggerLedgerChanged().
		TriggerSuccessNotification(fmt.Sprintf("Recorded #%d: %s on %s",
			stored.ID, formatAmount(stored.Amount), stored.Category)).
		Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.logger.ErrorContext(r.Context(), "parse delete body failed",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	idStr := parser.Get("id")
	if idStr == "" {
		// htmx v2 moves DELETE parameters from the body to the URL.
		idStr = sanitizeInput(r.URL.Query().Get("id"))
	}
	if idStr == "" {
		BadRequestError("Missing record id").
			TriggerErrorNotification("Missing record id").
			Write(w)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		BadRequestError("Invalid record id").
			TriggerErrorNotification("Invalid record id").
			Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	found, err := s.ledger.DeleteRecord(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete record",
			log.FieldError, err.Error(),
			log.FieldRecordID, id)
		InternalServerError("Error deleting record").Write(w)
		return
	}
	if !found {
		// Already gone. Refresh listeners so a stale row disappears.
		NewResponse().
			TriggerLedgerChanged().
			TriggerNotification(NotificationWarning, fmt.Sprintf("Record #%d not found", id), 4000).
			Write(w)
		return
	}

	s.metrics.recordsDeleted.Add(1)

	NewResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification(fmt.Sprintf("Deleted record #%d", id)).
		Write(w)
}

// recordRow is one rendered line of the history table.
type recordRow struct {
	ID       int64
	Date     string
	Icon     string
	Category string
	Amount   string
	Note     string
}

// handleRecordsTable renders the filtered history table partial with
// its statistics row.
func (s *Server) handleRecordsTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	records, err := s.ledger.ListRecords(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list records", log.FieldError, err.Error())
		InternalServerError("Error loading records").Write(w)
		return
	}

	filter, err := parseFilter(r.URL.Query(), records)
	if err != nil {
		UnprocessableEntityError("Invalid filter: " + err.Error()).Write(w)
		return
	}
	filtered := report.Apply(records, filter)

	rows := make([]recordRow, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, recordRow{
			ID:       rec.ID,
			Date:     rec.Date.String(),
			Icon:     categoryIcon(rec.Category),
			Category: rec.Category.String(),
			Amount:   formatAmount(rec.Amount),
			Note:     rec.Note,
		})
	}

	stats, hasStats := report.Compute(filtered)
	data := struct {
		HasStats    bool
		Total       string
		Average     string
		Maximum     string
		Count       int
		Rows        []recordRow
		ExportQuery string
	}{
		HasStats:    hasStats,
		Total:       formatAmount(stats.Total),
		Average:     formatAmount(stats.Average),
		Maximum:     formatAmount(stats.Maximum),
		Count:       stats.Count,
		Rows:        rows,
		ExportQuery: r.URL.RawQuery,
	}
	s.render(w, r, "records_table", data)
}

// handleExportCSV streams the filtered record set as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	records, err := s.ledger.ListRecords(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list records for export", log.FieldError, err.Error())
		http.Error(w, "error loading records", http.StatusInternalServerError)
		return
	}

	filter, err := parseFilter(r.URL.Query(), records)
	if err != nil {
		http.Error(w, "invalid filter: "+err.Error(), http.StatusBadRequest)
		return
	}
	filtered := report.Apply(records, filter)

	filename := export.Filename(core.Today(time.Now()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, filtered); err != nil {
		// Headers are out; all that is left is the log line.
		s.logger.ErrorContext(ctx, "csv export failed",
			log.FieldError, err.Error(),
			log.FieldRows, len(filtered))
		return
	}
	s.metrics.csvExports.Add(1)

	s.logger.InfoContext(ctx, "csv export served", log.FieldRows, len(filtered))
}

// isValidationError reports whether the error comes from the record
// shape rules rather than from storage.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrFutureDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrUnknownCategory) ||
		errors.Is(err, core.ErrNoteTooLong)
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/report"
)

const defaultPeriod = report.Last30Days

func parsePeriodParam(r *http.Request) (report.Period, error) {
	v := r.URL.Query().Get("period")
	if v == "" {
		return defaultPeriod, nil
	}
	return report.ParsePeriod(v)
}

// handleAnalyticsPanel renders the period summary, category breakdown,
// and top list for the selected window.
func (s *Server) handleAnalyticsPanel(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	period, err := parsePeriodParam(r)
	if err != nil {
		UnprocessableEntityError("Unknown period").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	records, err := s.ledger.ListRecords(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list records for analytics",
			log.FieldError, err.Error(),
			log.FieldPeriod, string(period))
		InternalServerError("Error loading records").Write(w)
		return
	}

	window := period.Window(core.Today(time.Now()), records)
	summary, hasData := report.Overview(window)

	type categoryBar struct {
		Icon     string
		Category string
		Amount   string
		Percent  int
	}
	type topEntry struct {
		Rank     int
		Icon     string
		Category string
		Amount   string
	}
	data := struct {
		Period       string
		HasData      bool
		Total        string
		AverageDaily string
		MaxSingle    string
		MinSingle    string
		Transactions int
		Categories   int
		Bars         []categoryBar
		Top          []topEntry
	}{
		Period:  string(period),
		HasData: hasData,
	}

	if hasData {
		data.Total = formatAmount(summary.Total)
		data.AverageDaily = formatAmount(summary.AverageDaily)
		data.MaxSingle = formatAmount(summary.MaxSingle)
		data.MinSingle = formatAmount(summary.MinSingle)
		data.Transactions = summary.Transactions
		data.Categories = summary.Categories

		groups := report.ByCategory(window)
		// Bar widths scale against the largest category, which sorts
		// first.
		maxCents := groups[0].Total.Cents
		for _, g := range groups {
			data.Bars = append(data.Bars, categoryBar{
				Icon:     categoryIcon(g.Category),
				Category: g.Category.String(),
				Amount:   formatAmount(g.Total),
				Percent:  int(g.Total.Cents * 100 / maxCents),
			})
		}
		for i, g := range report.Top(groups, 5) {
			data.Top = append(data.Top, topEntry{
				Rank:     i + 1,
				Icon:     categoryIcon(g.Category),
				Category: g.Category.String(),
				Amount:   formatAmount(g.Total),
			})
		}
	}

	s.render(w, r, "analytics_panel", data)
}

// handleAnalyticsTrend returns the daily spending series for the
// selected window as JSON chart points. Days without records are not
// zero-filled, so the series may have gaps.
func (s *Server) handleAnalyticsTrend(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	period, err := parsePeriodParam(r)
	if err != nil {
		http.Error(w, "unknown period", http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	records, err := s.ledger.ListRecords(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list records for trend",
			log.FieldError, err.Error(),
			log.FieldPeriod, string(period))
		http.Error(w, "error loading records", http.StatusInternalServerError)
		return
	}

	window := period.Window(core.Today(time.Now()), records)

	type point struct {
		Date        string `json:"date"`
		AmountCents int64  `json:"amount_cents"`
	}
	points := make([]point, 0)
	for _, dt := range report.DailySeries(window) {
		points = append(points, point{
			Date:        dt.Date.String(),
			AmountCents: dt.Total.Cents,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(points)
}

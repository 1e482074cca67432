package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/report"
)

// render executes a named template, answering 500 when templates are
// missing or execution fails.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", name,
			log.FieldError, err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data := struct {
		Today      string
		Categories []categoryOption
		NoteMaxLen int
	}{
		Today:      core.Today(time.Now()).String(),
		Categories: categoryOptions(),
		NoteMaxLen: core.NoteMaxLen,
	}
	s.render(w, r, "index_page", data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	// The filter widgets initialize from the extremes of the data.
	var bounds report.Bounds
	hasData := false
	if records, err := s.ledger.ListRecords(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to load records for filter bounds", log.FieldError, err.Error())
	} else {
		bounds, hasData = report.DataBounds(records)
	}

	data := struct {
		Categories []categoryOption
		HasData    bool
		MinDate    string
		MaxDate    string
		MinAmount  string
		MaxAmount  string
	}{
		Categories: categoryOptions(),
		HasData:    hasData,
		MinDate:    bounds.MinDate.String(),
		MaxDate:    bounds.MaxDate.String(),
		MinAmount:  bounds.MinAmount.String(),
		MaxAmount:  bounds.MaxAmount.String(),
	}
	s.render(w, r, "history_page", data)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	type periodOption struct {
		Value    string
		Label    string
		Selected bool
	}
	data := struct {
		Periods []periodOption
	}{
		Periods: []periodOption{
			{Value: string(report.Last7Days), Label: "Last 7 Days"},
			{Value: string(report.Last30Days), Label: "Last 30 Days", Selected: true},
			{Value: string(report.Last90Days), Label: "Last 90 Days"},
			{Value: string(report.AllTime), Label: "All Time"},
		},
	}
	s.render(w, r, "analytics_page", data)
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).String(),
	})
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.ledger.Health(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	cacheStats := s.ledger.CacheStats()
	checks["cache"] = map[string]any{
		"entries": cacheStats.Size,
		"status":  "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes application counters in Prometheus text
// exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cacheStats := s.ledger.CacheStats()
	totalRecords, err := s.ledger.TotalRecords(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed counting records for metrics", log.FieldError, err.Error())
		totalRecords = 0
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", s.tracer.Requests())

	fmt.Fprintf(w, "# HELP records_created_total Total number of records created\n")
	fmt.Fprintf(w, "# TYPE records_created_total counter\n")
	fmt.Fprintf(w, "records_created_total %d\n\n", s.metrics.recordsCreated.Load())

	fmt.Fprintf(w, "# HELP records_deleted_total Total number of records deleted\n")
	fmt.Fprintf(w, "# TYPE records_deleted_total counter\n")
	fmt.Fprintf(w, "records_deleted_total %d\n\n", s.metrics.recordsDeleted.Load())

	fmt.Fprintf(w, "# HELP csv_exports_total Total number of CSV exports served\n")
	fmt.Fprintf(w, "# TYPE csv_exports_total counter\n")
	fmt.Fprintf(w, "csv_exports_total %d\n\n", s.metrics.csvExports.Load())

	fmt.Fprintf(w, "# HELP record_events_published_total Record events delivered to the broker\n")
	fmt.Fprintf(w, "# TYPE record_events_published_total counter\n")
	fmt.Fprintf(w, "record_events_published_total %d\n\n", s.ledger.EventsPublished())

	fmt.Fprintf(w, "# HELP cache_hits_total Total snapshot cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheStats.Hits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total snapshot cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheStats.Misses)

	fmt.Fprintf(w, "# HELP cache_entries Current snapshot cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries %d\n\n", cacheStats.Size)

	fmt.Fprintf(w, "# HELP rate_limited_total Requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limited_total counter\n")
	fmt.Fprintf(w, "rate_limited_total %d\n\n", s.limiter.Limited())

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.limiter.ActiveClients())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Requests matching suspicious patterns\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", s.detector.SuspiciousCount())

	fmt.Fprintf(w, "# HELP ledger_records Records currently stored\n")
	fmt.Fprintf(w, "# TYPE ledger_records gauge\n")
	fmt.Fprintf(w, "ledger_records %d\n\n", totalRecords)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.metrics.startedAt).Seconds())
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cruxlens/cruxlens/internal/analyze"
	"github.com/cruxlens/cruxlens/internal/crux"
	"github.com/cruxlens/cruxlens/internal/metrics"
)

// Fetcher retrieves the normalized CrUX record for one page URL.
// *crux.Client implements it; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*crux.URLRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface. main uses it to
// route fetches through a hot-swappable client.
type FetcherFunc func(ctx context.Context, pageURL string) (*crux.URLRecord, error)

func (f FetcherFunc) Fetch(ctx context.Context, pageURL string) (*crux.URLRecord, error) {
	return f(ctx, pageURL)
}

// Notifier delivers batch recommendations out of band. Delivery must not
// block or fail the request that triggered it.
type Notifier interface {
	Deliver(insights []analyze.Insight)
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	fetcher  Fetcher
	notifier Notifier
	mux      *http.ServeMux
}

// New creates a Handler wired to the given fetcher and registers all routes.
// notifier may be nil to disable recommendation delivery.
func New(fetcher Fetcher, notifier Notifier) http.Handler {
	h := &Handler{fetcher: fetcher, notifier: notifier, mux: http.NewServeMux()}

	h.mux.Handle("/api/v1/health", instrument("health", h.health))
	h.mux.Handle("/api/v1/report", instrument("report", h.report))
	h.mux.Handle("/api/v1/reports", instrument("reports", h.reports))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// instrument counts requests per route; method and status code labels are
// filled in by the promhttp middleware.
func instrument(route string, next http.HandlerFunc) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		metrics.APIRequests.MustCurryWith(prometheus.Labels{"route": route}),
		next,
	)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — a static liveness probe.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// report handles POST /api/v1/report — fetch one URL and attach insights.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonDetailErr(w, http.StatusBadRequest, "Invalid input", "request body must be JSON")
		return
	}
	if req.URL == "" {
		jsonDetailErr(w, http.StatusBadRequest, "Invalid input", "url is required")
		return
	}

	rec, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		writeFetchError(w, req.URL, err)
		return
	}

	jsonResp(w, http.StatusOK, ReportResponse{
		URLRecord: *rec,
		Insights:  analyze.Insights([]crux.URLRecord{*rec}),
	})
}

// reports handles POST /api/v1/reports — fetch a batch of URLs, aggregate
// statistics, optionally filter/sort, and derive insights.
//
// URLs are fetched one at a time in input order; a failed URL is recorded
// into the errors list and never aborts the batch. Statistics cover all
// successfully fetched records; filter/sort and insights run afterwards.
func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req BatchReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonDetailErr(w, http.StatusBadRequest, "Invalid input", "request body must be JSON")
		return
	}
	if len(req.URLs) == 0 {
		jsonDetailErr(w, http.StatusBadRequest, "Invalid input", "urls must be a non-empty list")
		return
	}
	sortOrder := req.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		jsonDetailErr(w, http.StatusBadRequest, "Invalid input", `sort_order must be "asc" or "desc"`)
		return
	}

	records := make([]crux.URLRecord, 0, len(req.URLs))
	var errs []ErrorEntry
	for _, u := range req.URLs {
		rec, err := h.fetcher.Fetch(r.Context(), u)
		if err != nil {
			slog.Warn("api: batch fetch failed", "url", u, "err", err)
			errs = append(errs, ErrorEntry{URL: u, Error: err.Error()})
			continue
		}
		records = append(records, *rec)
	}

	stats := analyze.Aggregate(records)
	records = analyze.FilterAndSort(records, analyze.Options{
		SortBy:          req.SortBy,
		SortOrder:       sortOrder,
		FilterThreshold: req.FilterThreshold,
	})
	insights := analyze.Insights(records)

	if h.notifier != nil {
		h.notifier.Deliver(insights)
	}

	jsonResp(w, http.StatusOK, BatchReportResponse{
		URLData:    records,
		Statistics: stats,
		Insights:   insights,
		Errors:     errs,
	})
}

// --- helpers ----------------------------------------------------------------

// writeFetchError maps a fetch failure to the single-URL error contract:
// InvalidURL → 400, ConnectionError → 503, ResponseError → 502, anything
// else → 500 with a generic body.
func writeFetchError(w http.ResponseWriter, pageURL string, err error) {
	var connErr *crux.ConnectionError
	var respErr *crux.ResponseError
	switch {
	case errors.Is(err, crux.ErrInvalidURL):
		jsonErr(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &connErr):
		jsonDetailErr(w, http.StatusServiceUnavailable, "Connection error", connErr.Error())
	case errors.As(err, &respErr):
		jsonDetailErr(w, http.StatusBadGateway, "API error", respErr.Error())
	default:
		slog.Error("api: unexpected fetch error", "url", pageURL, "err", err)
		jsonDetailErr(w, http.StatusInternalServerError, "Server error", "An unexpected error occurred")
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func jsonDetailErr(w http.ResponseWriter, code int, msg, details string) {
	jsonResp(w, code, errorResponse{Error: msg, Details: details})
}

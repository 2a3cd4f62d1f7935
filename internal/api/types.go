package api

import (
	"github.com/cruxlens/cruxlens/internal/analyze"
	"github.com/cruxlens/cruxlens/internal/crux"
)

// ReportRequest is the body of POST /api/v1/report.
type ReportRequest struct {
	URL string `json:"url"`
}

// BatchReportRequest is the body of POST /api/v1/reports.
type BatchReportRequest struct {
	URLs []string `json:"urls"`

	// SortBy is an optional "<metric>_<percentile>" key, e.g.
	// "largest_contentful_paint_p75".
	SortBy string `json:"sort_by"`

	// SortOrder is "asc" (default) or "desc".
	SortOrder string `json:"sort_order"`

	// FilterThreshold keeps only records whose SortBy value is >= this.
	FilterThreshold *float64 `json:"filter_threshold"`
}

// ReportResponse is the payload for POST /api/v1/report: the URL's record
// plus insights scoped to that one record.
type ReportResponse struct {
	crux.URLRecord
	Insights []analyze.Insight `json:"insights"`
}

// BatchReportResponse is the payload for POST /api/v1/reports.
// Errors is present only when at least one URL failed.
type BatchReportResponse struct {
	URLData    []crux.URLRecord   `json:"url_data"`
	Statistics analyze.Statistics `json:"statistics"`
	Insights   []analyze.Insight  `json:"insights"`
	Errors     []ErrorEntry       `json:"errors,omitempty"`
}

// ErrorEntry records one failed URL in a batch.
type ErrorEntry struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Package api implements the JSON HTTP API of cruxlens-server.
//
// New(fetcher, notifier) returns an http.Handler that serves:
//
//	GET  /api/v1/health   — static liveness probe
//	POST /api/v1/report   — CrUX record + insights for one URL
//	POST /api/v1/reports  — batch: url_data, statistics, insights, errors;
//	                        optional sort_by / sort_order / filter_threshold
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Map fetch failures to statuses: invalid URL → 400, upstream
//     unreachable/timeout → 503, upstream non-200 → 502, unclassified → 500
//
// In the batch path a per-URL failure is isolated into the response's errors
// list; only the single-URL path aborts on failure. JSON types are defined
// in types.go. No external HTTP framework is used.
package api

// Package crux is the client adapter for the Chrome UX Report API.
//
// Fetch issues one POST per page URL to the queryRecord endpoint (bounded by
// the configured timeout) and returns a normalized URLRecord. Failures are
// classified into three kinds checked by the API layer:
//
//   - ErrInvalidURL    — the caller's URL was rejected before any network I/O
//   - *ConnectionError — the endpoint was unreachable or the request timed out
//   - *ResponseError   — the endpoint answered with a non-200 status; carries
//     the status code and the upstream error message
//
// Normalize reshapes a raw response body into a URLRecord and never fails:
// a missing url falls back to "Unknown URL" and absent metrics, histograms
// and percentiles become empty containers.
package crux

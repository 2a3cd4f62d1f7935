package crux

import (
	"encoding/json"
	"strconv"
)

// UnknownURL is substituted when the upstream response carries no URL.
const UnknownURL = "Unknown URL"

// Metric is one named metric of a URLRecord: the real-user distribution
// histogram plus the percentile summary. The histogram is opaque to this
// service and passed through to callers unchanged.
type Metric struct {
	Histogram   []json.RawMessage      `json:"histogram"`
	Percentiles map[string]interface{} `json:"percentiles"`
}

// URLRecord is the normalized CrUX record for one page URL.
// Each metric name appears at most once.
type URLRecord struct {
	URL     string            `json:"url"`
	Metrics map[string]Metric `json:"metrics"`
}

// Percentile returns the metric's value for a percentile label ("p75",
// "p95", ...) coerced to float64. CrUX reports percentiles as either JSON
// numbers or numeric strings depending on the metric, so both are accepted.
// The second return is false when the label is absent or the value does not
// parse.
func (m Metric) Percentile(label string) (float64, bool) {
	raw, ok := m.Percentiles[label]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

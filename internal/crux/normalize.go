package crux

import "encoding/json"

// Normalize reshapes a raw queryRecord response into a URLRecord. It has no
// failure path: a missing url yields UnknownURL, absent metrics yield an
// empty map, and each metric's histogram and percentiles default to empty
// containers so the record always marshals with every field present.
func Normalize(raw Response) URLRecord {
	rec := URLRecord{
		URL:     raw.Record.Key.URL,
		Metrics: make(map[string]Metric, len(raw.Record.Metrics)),
	}
	if rec.URL == "" {
		rec.URL = UnknownURL
	}

	for name, m := range raw.Record.Metrics {
		if m.Histogram == nil {
			m.Histogram = []json.RawMessage{}
		}
		if m.Percentiles == nil {
			m.Percentiles = map[string]interface{}{}
		}
		rec.Metrics[name] = m
	}
	return rec
}

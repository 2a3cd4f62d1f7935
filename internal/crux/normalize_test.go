package crux

import (
	"encoding/json"
	"testing"
)

func decodeResponse(t *testing.T, body string) Response {
	t.Helper()
	var raw Response
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("unmarshal test body: %v", err)
	}
	return raw
}

func TestNormalize_MissingURL(t *testing.T) {
	raw := decodeResponse(t, `{"record": {"metrics": {}}}`)
	rec := Normalize(raw)
	if rec.URL != UnknownURL {
		t.Errorf("url: got %q, want %q", rec.URL, UnknownURL)
	}
}

func TestNormalize_MissingMetrics(t *testing.T) {
	raw := decodeResponse(t, `{"record": {"key": {"url": "https://a.com"}}}`)
	rec := Normalize(raw)
	if rec.URL != "https://a.com" {
		t.Errorf("url: got %q", rec.URL)
	}
	if rec.Metrics == nil {
		t.Fatal("metrics: got nil, want empty map")
	}
	if len(rec.Metrics) != 0 {
		t.Errorf("metrics: got %d entries, want 0", len(rec.Metrics))
	}
}

func TestNormalize_EmptyBody(t *testing.T) {
	rec := Normalize(Response{})
	if rec.URL != UnknownURL {
		t.Errorf("url: got %q, want %q", rec.URL, UnknownURL)
	}
	if rec.Metrics == nil {
		t.Fatal("metrics: got nil, want empty map")
	}
}

func TestNormalize_MetricDefaults(t *testing.T) {
	// A metric with neither histogram nor percentiles gets empty containers,
	// so the record always marshals with both fields present.
	raw := decodeResponse(t, `{
		"record": {
			"key": {"url": "https://a.com"},
			"metrics": {"first_contentful_paint": {}}
		}
	}`)
	rec := Normalize(raw)

	m, ok := rec.Metrics["first_contentful_paint"]
	if !ok {
		t.Fatal("metric missing after normalize")
	}
	if m.Histogram == nil {
		t.Error("histogram: got nil, want empty slice")
	}
	if m.Percentiles == nil {
		t.Error("percentiles: got nil, want empty map")
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	want := `{"url":"https://a.com","metrics":{"first_contentful_paint":{"histogram":[],"percentiles":{}}}}`
	if string(out) != want {
		t.Errorf("marshalled record:\n got %s\nwant %s", out, want)
	}
}

func TestNormalize_HistogramPassthrough(t *testing.T) {
	raw := decodeResponse(t, `{
		"record": {
			"key": {"url": "https://a.com"},
			"metrics": {
				"largest_contentful_paint": {
					"histogram": [
						{"start": 0, "end": 2500, "density": 0.85},
						{"start": 2500, "end": 4000, "density": 0.1},
						{"start": 4000, "density": 0.05}
					],
					"percentiles": {"p75": 1800}
				}
			}
		}
	}`)
	rec := Normalize(raw)

	hist := rec.Metrics["largest_contentful_paint"].Histogram
	if len(hist) != 3 {
		t.Fatalf("histogram buckets: got %d, want 3", len(hist))
	}
	// Buckets are opaque raw JSON, preserved as received.
	var bucket struct {
		Start   float64 `json:"start"`
		Density float64 `json:"density"`
	}
	if err := json.Unmarshal(hist[2], &bucket); err != nil {
		t.Fatalf("unmarshal bucket: %v", err)
	}
	if bucket.Start != 4000 || bucket.Density != 0.05 {
		t.Errorf("bucket[2]: got %+v", bucket)
	}
}

func TestMetric_Percentile(t *testing.T) {
	m := Metric{Percentiles: map[string]interface{}{
		"p75":  float64(2500),
		"p95":  "4000.5",
		"bad":  "not-a-number",
		"null": nil,
	}}

	tests := []struct {
		label  string
		want   float64
		wantOK bool
	}{
		{"p75", 2500, true},
		{"p95", 4000.5, true},
		{"bad", 0, false},
		{"null", 0, false},
		{"absent", 0, false},
	}
	for _, tc := range tests {
		got, ok := m.Percentile(tc.label)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("Percentile(%q): got (%v, %v), want (%v, %v)",
				tc.label, got, ok, tc.want, tc.wantOK)
		}
	}
}

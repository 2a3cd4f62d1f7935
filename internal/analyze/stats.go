package analyze

import (
	"sort"

	"github.com/cruxlens/cruxlens/internal/crux"
)

// percentileLabels are the percentiles aggregated per metric.
var percentileLabels = []string{"p75", "p95"}

// Statistics summarizes percentile values across one batch of records.
// Keys in the four maps have the form "<metric>_<percentile>". A percentile
// with no valid values contributes no keys at all.
type Statistics struct {
	Averages map[string]float64 `json:"averages"`
	Sums     map[string]float64 `json:"sums"`
	Min      map[string]float64 `json:"min"`
	Max      map[string]float64 `json:"max"`
	URLs     []string           `json:"urls"`
	Count    int                `json:"count"`
}

// Aggregate computes per-metric statistics over the p75 and p95 values of
// records. Values that do not parse as floats are skipped: they count
// neither toward the average divisor nor toward min/max. An empty batch
// yields an all-empty Statistics with Count 0, not an error.
func Aggregate(records []crux.URLRecord) Statistics {
	stats := Statistics{
		Averages: map[string]float64{},
		Sums:     map[string]float64{},
		Min:      map[string]float64{},
		Max:      map[string]float64{},
		URLs:     make([]string, 0, len(records)),
		Count:    len(records),
	}
	for _, r := range records {
		stats.URLs = append(stats.URLs, r.URL)
	}

	for _, name := range metricNames(records) {
		for _, label := range percentileLabels {
			values := collect(records, name, label)
			if len(values) == 0 {
				continue
			}

			sum, min, max := values[0], values[0], values[0]
			for _, v := range values[1:] {
				sum += v
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}

			key := name + "_" + label
			stats.Sums[key] = sum
			stats.Averages[key] = sum / float64(len(values))
			stats.Min[key] = min
			stats.Max[key] = max
		}
	}
	return stats
}

// metricNames returns the union of metric names across records, sorted so
// aggregation order is deterministic.
func metricNames(records []crux.URLRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for name := range r.Metrics {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// collect gathers the parseable values of one percentile of one metric
// across records, in record order.
func collect(records []crux.URLRecord, metric, label string) []float64 {
	var values []float64
	for _, r := range records {
		m, ok := r.Metrics[metric]
		if !ok {
			continue
		}
		if v, ok := m.Percentile(label); ok {
			values = append(values, v)
		}
	}
	return values
}

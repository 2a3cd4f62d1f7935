package analyze

import (
	"math"
	"sort"
	"strings"

	"github.com/cruxlens/cruxlens/internal/crux"
)

// Options controls the optional filter/sort stage of a batch report.
type Options struct {
	// SortBy is a "<metric>_<percentile>" key; empty disables the stage.
	SortBy string

	// SortOrder is "asc" (default) or "desc".
	SortOrder string

	// FilterThreshold, when set together with SortBy, keeps only records
	// whose resolved value is parseable and >= the threshold.
	FilterThreshold *float64
}

// FilterAndSort applies the optional threshold filter and stable sort to
// records. The percentile label is always the final underscore-separated
// component of SortBy, so metric names containing underscores resolve
// correctly ("cumulative_layout_shift_p75" → metric "cumulative_layout_shift",
// percentile "p75").
//
// Records whose key value is missing or unparseable are excluded by the
// filter but sort as +Inf: last in ascending order, first in descending.
// Without a SortBy the input is returned unchanged.
func FilterAndSort(records []crux.URLRecord, opts Options) []crux.URLRecord {
	if opts.SortBy == "" {
		return records
	}
	metric, label := splitSortKey(opts.SortBy)

	out := make([]crux.URLRecord, 0, len(records))
	if opts.FilterThreshold != nil {
		for _, r := range records {
			if v, ok := resolve(r, metric, label); ok && v >= *opts.FilterThreshold {
				out = append(out, r)
			}
		}
	} else {
		out = append(out, records...)
	}

	desc := opts.SortOrder == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		vi := sortValue(out[i], metric, label)
		vj := sortValue(out[j], metric, label)
		if desc {
			return vi > vj
		}
		return vi < vj
	})
	return out
}

// splitSortKey splits a sort key on its last underscore. A key with no
// underscore yields empty parts, which resolve() never matches — the filter
// then excludes everything and the sort leaves order untouched.
func splitSortKey(key string) (metric, label string) {
	i := strings.LastIndex(key, "_")
	if i < 0 {
		return "", ""
	}
	return key[:i], key[i+1:]
}

// resolve looks up the metric's percentile value in r.
func resolve(r crux.URLRecord, metric, label string) (float64, bool) {
	m, ok := r.Metrics[metric]
	if !ok {
		return 0, false
	}
	return m.Percentile(label)
}

// sortValue is resolve with unresolved values pinned to +Inf.
func sortValue(r crux.URLRecord, metric, label string) float64 {
	if v, ok := resolve(r, metric, label); ok {
		return v
	}
	return math.Inf(1)
}

package analyze

import (
	"fmt"

	"github.com/cruxlens/cruxlens/internal/crux"
)

// AllClearMessage is the sentinel returned when no record in a batch
// breaches any threshold.
const AllClearMessage = "All URLs appear to meet performance criteria."

// Insight is one entry of an insight report: either per-URL recommendations,
// or the global all-clear sentinel carrying only Message.
type Insight struct {
	URL             string   `json:"url,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// rule is one fixed p75 threshold with its recommendation template.
type rule struct {
	metric    string
	threshold float64
	template  string
}

// The thresholds follow the CrUX "good" boundaries: LCP and FCP in
// milliseconds, CLS unitless. Slice order fixes the order recommendations
// appear in per record.
var rules = []rule{
	{
		metric:    "largest_contentful_paint",
		threshold: 2500,
		template:  "Optimize images and server responses to improve LCP (p75: %v ms).",
	},
	{
		metric:    "first_contentful_paint",
		threshold: 1800,
		template:  "Consider lazy-loading and code splitting to lower FCP (p75: %v ms).",
	},
	{
		metric:    "cumulative_layout_shift",
		threshold: 0.1,
		template:  "Reserve space for dynamic content to reduce CLS (p75: %v).",
	},
}

// Insights evaluates the fixed thresholds against each record's p75 values.
// A record breaching nothing is omitted entirely rather than included with
// an empty recommendation list; a batch where nothing fires collapses to a
// single all-clear Insight.
func Insights(records []crux.URLRecord) []Insight {
	var insights []Insight
	for _, r := range records {
		var recs []string
		for _, rl := range rules {
			m, ok := r.Metrics[rl.metric]
			if !ok {
				continue
			}
			v, ok := m.Percentile("p75")
			if !ok || v <= rl.threshold {
				continue
			}
			recs = append(recs, fmt.Sprintf(rl.template, v))
		}
		if len(recs) > 0 {
			insights = append(insights, Insight{URL: r.URL, Recommendations: recs})
		}
	}

	if len(insights) == 0 {
		return []Insight{{Message: AllClearMessage}}
	}
	return insights
}

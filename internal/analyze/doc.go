// Package analyze derives batch-level results from normalized CrUX records:
//
//   - Aggregate — per-metric average/sum/min/max over p75 and p95 values,
//     keyed "<metric>_<percentile>"; unparseable values are skipped silently
//   - Insights — fixed LCP/FCP/CLS p75 thresholds producing per-URL
//     recommendations, or a single all-clear sentinel
//   - FilterAndSort — optional threshold filter and stable sort on a
//     "<metric>_<percentile>" key
//
// Everything here is pure computation over in-memory records; empty or
// malformed input yields empty results, never an error.
package analyze

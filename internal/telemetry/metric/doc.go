// Package metric provides Prometheus metrics for SlotKV.
//
//   - prometheus.go: registry, engine metrics and HTTP handler
//   - collector.go: scrape-time collector reading slot occupancy from a medium
//
// All Registry methods are safe on a nil receiver so components can run
// without metrics.
package metric

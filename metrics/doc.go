// Package metrics exposes Prometheus collectors for searches and the HTTP
// server. A SearchMetrics owns its registry; Monitor returns a fresh
// search.SearchMonitor per search so concurrent searches do not share state.
package metrics

// Package metric provides Prometheus metrics infrastructure for the
// resolution service.
//
// A MetricsRegistry wraps a dedicated prometheus.Registry, pre-registers
// the core platform metrics, and lets each component register its own
// metrics under a namespaced key. Components treat the registry as an
// optional dependency: a nil registry disables metrics without branching
// at every call site beyond a nil check.
package metric

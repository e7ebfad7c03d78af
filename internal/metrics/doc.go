// Package metrics exposes Prometheus collectors for queue store activity.
//
// Collectors are registered against a caller-supplied Registerer so tests and
// embedded users can keep them off the global registry. A nil *Collectors is
// valid and records nothing.
package metrics

// Package preflight provides readiness checks for the store location that
// mqlite depends on.
//
// The CLI "mqlite doctor" command runs RunAll and renders each Result. The
// individual check functions are exported so other callers can probe a single
// concern.
package preflight

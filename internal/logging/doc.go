// Package logging assembles structured slog loggers and formatting helpers used
// across mqlite.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so store and client code can tag
// log lines with channel identifiers and topics. The package also provides a
// no-op logger, which every component uses when no logger is injected.
package logging

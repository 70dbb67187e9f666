// Package logging assembles structured slog loggers and formatting helpers used
// across phisweep.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so workflow code can tag log lines with
// batch ids, record ids and file kinds. A no-op logger is provided for tests
// and wiring code that cannot fail.
package logging

// Package preflight provides readiness checks for the paths, binaries and
// store that phisweep depends on.
//
// The CLI "phisweep check" command runs RunAll and prints every result; the
// run command calls it before discovery so a doomed pass stops early. Checks
// are gated by configuration: GPFS binaries are only checked when
// scan.use_gpfs is set.
package preflight

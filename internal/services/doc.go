// Package services defines shared utilities consumed by the classifiers, the
// store backends and the workflow.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, record IDs, and file kinds for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent privacy statuses (file_not_found vs indeterminate) and
//     separate batch-fatal connectivity errors from per-file failures.
//
// Use these helpers when wiring new pipeline code so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services

package logging

import (
	"context"
	"log/slog"

	"phisweep/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID carries the workflow batch correlation id.
	FieldBatchID = "batch_id"
	// FieldRecordID carries the store record id of the file being classified.
	FieldRecordID = "record_id"
	FieldFileKind = "file_kind"
	FieldFileName = "file_name"
	FieldStatus   = "privacy_status"
	// FieldEventType names the event in a stable, grep-friendly form.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator reading a warning.
	FieldErrorHint = "error_hint"
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if id, ok := services.RecordIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRecordID, id))
	}
	if kind, ok := services.FileKindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFileKind, string(kind)))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}

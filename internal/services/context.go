package services

import (
	"context"

	"phisweep/internal/privacy"
)

type contextKey string

const (
	batchIDKey  contextKey = "batch_id"
	recordIDKey contextKey = "record_id"
	fileKindKey contextKey = "file_kind"
)

// WithBatchID annotates context with the workflow batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRecordID annotates context with the store record identifier.
func WithRecordID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, recordIDKey, id)
}

// RecordIDFromContext extracts the record identifier if present.
func RecordIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(recordIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFileKind annotates context with the file kind of the running batch.
func WithFileKind(ctx context.Context, kind privacy.FileKind) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, fileKindKey, kind)
}

// FileKindFromContext returns the file kind if present.
func FileKindFromContext(ctx context.Context) (privacy.FileKind, bool) {
	if v, ok := ctx.Value(fileKindKey).(privacy.FileKind); ok && v != "" {
		return v, true
	}
	return "", false
}

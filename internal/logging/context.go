package logging

import (
	"context"
	"log/slog"

	"github.com/nycterent/thefilter/internal/services"
)

// Canonical field names. Handlers and log consumers key on these, so every
// package logs through them instead of inventing its own spellings.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldStage     = "stage"
	FieldSource    = "source"
	FieldRule      = "rule"
	FieldAttempt   = "attempt"
	FieldOutcome   = "outcome"
	FieldRequestID = "request_id"
	FieldAlert     = "alert"
)

// WithContext augments the logger with the run id, stage, and request id the
// context carries, so stage code logs without threading those values through
// every call.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	fields := make([]Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}

package services

import "context"

type (
	runIDKeyType     struct{}
	stageKeyType     struct{}
	requestIDKeyType struct{}
)

// WithRunID annotates ctx with the pipeline run identifier.
func WithRunID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, runIDKeyType{}, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(runIDKeyType{}).(int64)
	return id, ok
}

// WithStage annotates ctx with the active stage name. Empty names are
// not recorded.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKeyType{}, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKeyType{})
}

// WithRequestID annotates ctx with a correlation identifier. Empty
// identifiers are not recorded.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKeyType{}, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKeyType{})
}

func withString(ctx context.Context, key any, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	s, ok := ctx.Value(key).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

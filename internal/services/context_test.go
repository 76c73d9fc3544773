package services_test

import (
	"context"
	"testing"

	"github.com/nycterent/thefilter/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, 42)
	ctx = services.WithStage(ctx, "publish")
	ctx = services.WithRequestID(ctx, "req-123")

	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != 42 {
		t.Fatalf("run id = %d, %v", id, ok)
	}
	stage, ok := services.StageFromContext(ctx)
	if !ok || stage != "publish" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	rid, ok := services.RequestIDFromContext(ctx)
	if !ok || rid != "req-123" {
		t.Fatalf("request id = %q, %v", rid, ok)
	}
}

func TestContextMissingValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Error("run id reported on empty context")
	}
	if _, ok := services.StageFromContext(ctx); ok {
		t.Error("stage reported on empty context")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Error("request id reported on empty context")
	}
}

func TestContextSkipsEmptyStrings(t *testing.T) {
	ctx := services.WithRequestID(services.WithStage(context.Background(), ""), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Error("blank stage recorded")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Error("blank request id recorded")
	}
}

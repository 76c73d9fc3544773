package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nycterent/thefilter/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "publish", "create draft", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"publish", "create draft", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "verify", "probe", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestClassification(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "publish", "send", "503", nil)
	if !services.IsTransient(transient) {
		t.Fatalf("expected transient classification for %v", transient)
	}
	if services.IsPermanent(transient) {
		t.Fatalf("transient error misclassified as permanent: %v", transient)
	}

	permanent := services.Wrap(services.ErrPermanent, "publish", "send", "401", nil)
	if services.IsTransient(permanent) {
		t.Fatalf("permanent error misclassified as transient: %v", permanent)
	}
	if !services.IsPermanent(permanent) {
		t.Fatalf("expected permanent classification for %v", permanent)
	}

	if services.IsTransient(nil) {
		t.Fatal("nil error must not be transient")
	}
	if services.IsTransient(errors.New("plain")) {
		t.Fatal("untagged error must not be transient")
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrTransient, "publish", "send", "http 503", nil)
	if got := services.Message(err); got != "publish: send: http 503" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := services.Message(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("expected untagged error passthrough, got %q", got)
	}
	if got := services.Message(nil); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}

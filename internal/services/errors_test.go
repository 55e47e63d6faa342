package services_test

import (
	"errors"
	"strings"
	"testing"

	"auricle/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "enrich", "complete", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"enrich", "complete", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "extract", "no content", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "narrate", "synthesize", "unknown voice", nil)
	if services.IsRetryable(validationErr) {
		t.Fatal("validation errors must not be retryable")
	}

	transientErr := services.Wrap(services.ErrTransient, "fetch", "get", "timeout", errors.New("io"))
	if !services.IsRetryable(transientErr) {
		t.Fatal("transient errors must be retryable")
	}

	if services.IsRetryable(nil) {
		t.Fatal("nil error must not be retryable")
	}
}

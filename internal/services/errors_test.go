package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"revoice/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrMux, "mux", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrMux) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mux", "ffmpeg", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToIO(t *testing.T) {
	err := services.Wrap(nil, "cleanup", "remove", "failed", errors.New("busy"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io marker, got %v", err)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("plain"), "unknown"},
		{services.Wrap(services.ErrCorrection, "correct", "chat", "", nil), "correction"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrSynthesis, "", "", "", nil)), "synthesis"},
		{services.Wrap(services.ErrTimeout, "", "", "", services.ErrTranscription), "timeout"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsClientError(t *testing.T) {
	if !services.IsClientError(services.Wrap(services.ErrValidation, "upload", "", "bad file", nil)) {
		t.Fatal("expected validation error to be a client error")
	}
	if services.IsClientError(services.Wrap(services.ErrMux, "", "", "", nil)) {
		t.Fatal("expected mux error not to be a client error")
	}
}

func TestMarkTimeout(t *testing.T) {
	if services.MarkTimeout(nil) != nil {
		t.Fatal("expected nil to stay nil")
	}
	cause := errors.New("deadline")
	err := services.Wrap(services.ErrSynthesis, "synthesize", "tts", "request", services.MarkTimeout(cause))
	if !errors.Is(err, services.ErrTimeout) || !errors.Is(err, services.ErrSynthesis) || !errors.Is(err, cause) {
		t.Fatalf("expected timeout, stage marker, and cause, got %v", err)
	}
	if services.Kind(err) != "timeout" {
		t.Fatalf("expected timeout kind, got %q", services.Kind(err))
	}
	marked := services.MarkTimeout(services.ErrTimeout)
	if strings.Count(marked.Error(), "timeout") != 1 {
		t.Fatalf("expected no double marking, got %q", marked.Error())
	}
}

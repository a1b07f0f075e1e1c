package gcloud

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"revoice/internal/config"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{status.Error(codes.Unavailable, "backend down"), true},
		{status.Error(codes.ResourceExhausted, "quota"), true},
		{status.Error(codes.DeadlineExceeded, "slow"), true},
		{status.Error(codes.Aborted, "conflict"), true},
		{status.Error(codes.InvalidArgument, "sample rate mismatch"), false},
		{status.Error(codes.PermissionDenied, "no"), false},
		{fmt.Errorf("attempt: %w", context.DeadlineExceeded), true},
		{context.Canceled, false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if _, got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestClassifiers(t *testing.T) {
	if !IsTimeout(status.Error(codes.DeadlineExceeded, "slow")) || IsTimeout(status.Error(codes.Unavailable, "x")) {
		t.Fatal("unexpected timeout classification")
	}
	if !IsAuth(status.Error(codes.Unauthenticated, "bad key")) || IsAuth(errors.New("x")) {
		t.Fatal("unexpected auth classification")
	}
	if got := Describe(status.Error(codes.InvalidArgument, "bad encoding")); got != "InvalidArgument: bad encoding" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := config.Default()
	if opts := ClientOptions(&cfg); len(opts) != 0 {
		t.Fatalf("expected application default credentials, got %d options", len(opts))
	}
	cfg.Google.CredentialsFile = "/etc/revoice/key.json"
	if opts := ClientOptions(&cfg); len(opts) != 1 {
		t.Fatalf("expected credentials option, got %d", len(opts))
	}
}

// Package gcloud holds the pieces shared by the Google Speech-to-Text and
// Text-to-Speech clients: credential options and gRPC error classification.
package gcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"revoice/internal/config"
	"revoice/internal/services/retry"
)

// ClientOptions returns the client options for the configured credentials.
// Without a credentials file the library falls back to application default credentials.
func ClientOptions(cfg *config.Config) []option.ClientOption {
	if cfg == nil {
		return nil
	}
	if path := strings.TrimSpace(cfg.Google.CredentialsFile); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

// Retryable classifies transient gRPC failures for retry.Do.
func Retryable(err error) (time.Duration, bool) {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0, false
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
			return 0, true
		case codes.Canceled:
			return 0, false
		}
	}
	return 0, retry.IsTimeout(err)
}

// IsTimeout reports whether err is a per-attempt or service-side deadline.
func IsTimeout(err error) bool {
	if retry.IsTimeout(err) {
		return true
	}
	return status.Code(err) == codes.DeadlineExceeded
}

// IsAuth reports whether the service rejected the credentials.
func IsAuth(err error) bool {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return true
	}
	return false
}

// Describe renders a short reason for err, naming the gRPC code when present.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return fmt.Sprintf("%s: %s", st.Code(), st.Message())
	}
	return err.Error()
}

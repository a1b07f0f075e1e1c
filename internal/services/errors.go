package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction    = errors.New("audio extraction error")
	ErrTranscription = errors.New("transcription error")
	ErrCorrection    = errors.New("correction error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrMux           = errors.New("mux error")
	ErrIO            = errors.New("io error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

var markers = []struct {
	err  error
	kind string
}{
	{ErrValidation, "validation"},
	{ErrConfiguration, "configuration"},
	{ErrTimeout, "timeout"},
	{ErrExtraction, "extraction"},
	{ErrTranscription, "transcription"},
	{ErrCorrection, "correction"},
	{ErrSynthesis, "synthesis"},
	{ErrMux, "mux"},
	{ErrIO, "io"},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the short name of the first sentinel marker carried by err.
// Unmarked errors report "unknown"; nil reports "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range markers {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return "unknown"
}

// IsClientError reports whether err was caused by the caller's input rather than
// a collaborator or the environment.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// MarkTimeout tags err with ErrTimeout while keeping the original chain.
func MarkTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

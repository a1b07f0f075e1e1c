package main

import (
	"errors"
	"testing"

	"revoice/internal/services"
)

func TestExitCode(t *testing.T) {
	validation := services.Wrap(services.ErrValidation, "upload", "validate", "unsupported video type", nil)
	if got := exitCode(validation); got != 2 {
		t.Fatalf("expected 2 for validation errors, got %d", got)
	}
	if got := exitCode(errors.New("mux failed")); got != 1 {
		t.Fatalf("expected 1 for other errors, got %d", got)
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "only")
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

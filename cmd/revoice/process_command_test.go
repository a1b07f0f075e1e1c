package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/pipeline/pipelinetest"
	"revoice/internal/services"
	"revoice/internal/testsupport"
)

func TestProcessCommandPrintsArtifacts(t *testing.T) {
	env := setupCLITestEnv(t, "")
	h := pipelinetest.New(t)
	stubServices(t, h)

	source := filepath.Join(env.baseDir, "Lecture.mp4")
	testsupport.WriteFile(t, source, 2048)
	output := filepath.Join(env.baseDir, "out", "lecture-english.mp4")

	out, _, err := runCLI(t, []string{"process", source, "-o", output}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "Original video: "+source)
	requireContains(t, out, "Transcript:\n  so um I went to the the store")
	requireContains(t, out, "Corrected text:\n  So I went to the store.")
	requireContains(t, out, "Revoiced video: "+output)
	requireContains(t, out, "Completed run ")

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output video: %v", err)
	}
	if got := h.Corrector.Inputs; len(got) != 1 || got[0] != "so um I went to the the store" {
		t.Fatalf("corrector saw %v", got)
	}
}

func TestProcessCommandJSONAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, "")
	stubServices(t, pipelinetest.New(t))

	source := filepath.Join(env.baseDir, "Talk.mov")
	testsupport.WriteFile(t, source, 1024)

	out, _, err := runCLI(t, []string{"--json", "process", source}, env.configPath)
	if err != nil {
		t.Fatalf("process --json: %v", err)
	}
	var payload struct {
		RunID      string `json:"run_id"`
		State      string `json:"state"`
		Corrected  string `json:"corrected"`
		OutputPath string `json:"output_path"`
		Error      string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if payload.State != "cleaned_up" || payload.Error != "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if want := filepath.Join(env.outputDir, "Talk_revoiced.mov"); payload.OutputPath != want {
		t.Fatalf("expected default output %s, got %s", want, payload.OutputPath)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, payload.RunID)
	requireContains(t, out, "Talk.mov")
	requireContains(t, out, "succeeded")

	out, _, err = runCLI(t, []string{"history", "show", payload.RunID}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "So I went to the store.")
	requireContains(t, out, "cleaned_up")

	out, _, err = runCLI(t, []string{"--json", "history", "show", payload.RunID}, env.configPath)
	if err != nil {
		t.Fatalf("history show --json: %v", err)
	}
	requireContains(t, out, `"status": "succeeded"`)
}

func TestProcessCommandReportsStageFailure(t *testing.T) {
	env := setupCLITestEnv(t, "")
	h := pipelinetest.New(t)
	h.Corrector.Err = services.Wrap(services.ErrCorrection, "correct", "chat", "model unavailable", nil)
	stubServices(t, h)

	source := filepath.Join(env.baseDir, "clip.avi")
	testsupport.WriteFile(t, source, 512)

	out, _, err := runCLI(t, []string{"--json", "process", source}, env.configPath)
	if err == nil {
		t.Fatal("expected process to fail")
	}
	requireContains(t, out, `"error_kind": "correction"`)
	requireContains(t, out, `"state": "failed"`)

	entries, readErr := os.ReadDir(env.outputDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no output after failure, found %d entries", len(entries))
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed")
}

func TestProcessCommandRejectsUnsupportedType(t *testing.T) {
	env := setupCLITestEnv(t, "")
	stubServices(t, pipelinetest.New(t))

	source := filepath.Join(env.baseDir, "notes.txt")
	testsupport.WriteFile(t, source, 16)

	_, _, err := runCLI(t, []string{"process", source}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported extension to fail")
	}
	if services.Kind(err) != "validation" {
		t.Fatalf("expected validation error, got %v (%s)", err, services.Kind(err))
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, "\n[history]\nenabled = false\n")
	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil {
		t.Fatal("expected history to fail when disabled")
	}
	requireContains(t, err.Error(), "run history is disabled")
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t, "")
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	out, _, err = runCLI(t, []string{"--json", "history"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty JSON list, got %q", out)
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/config"
	"revoice/internal/pipeline"
	"revoice/internal/pipeline/pipelinetest"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	workDir    string
	outputDir  string
	logDir     string
	historyDB  string
}

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "xdg"))
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		workDir:    filepath.Join(base, "work"),
		outputDir:  filepath.Join(base, "output"),
		logDir:     filepath.Join(base, "logs"),
		historyDB:  filepath.Join(base, "history.db"),
	}
	content := fmt.Sprintf(`[paths]
work_dir = %q
output_dir = %q
log_dir = %q
history_db = %q

[llm]
provider = "openai"
api_key = "test"

[retry]
max_attempts = 1
base_delay_ms = 1
max_delay_ms = 5

[logging]
level = "error"
%s`, env.workDir, env.outputDir, env.logDir, env.historyDB, extra)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// stubServices swaps the Google and LLM clients for the harness fakes.
func stubServices(t *testing.T, h *pipelinetest.Harness) {
	t.Helper()
	original := newServices
	newServices = func(context.Context, *config.Config, *slog.Logger) (pipeline.Dependencies, func(), error) {
		deps := h.Dependencies()
		deps.Display = nil
		return deps, func() {}, nil
	}
	t.Cleanup(func() { newServices = original })
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

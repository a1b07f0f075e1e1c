package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"revoice/internal/pipeline/pipelinetest"
)

func TestServeRefusesSecondInstance(t *testing.T) {
	env := setupCLITestEnv(t, "")
	stubServices(t, pipelinetest.New(t))

	held := flock.New(filepath.Join(env.logDir, serveLockName))
	if err := os.MkdirAll(env.logDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, _, err = runCLI(t, []string{"serve", "--bind", "127.0.0.1:0"}, env.configPath)
	if err == nil {
		t.Fatal("expected serve to refuse a held lock")
	}
	requireContains(t, err.Error(), "another revoice server is already running")
}

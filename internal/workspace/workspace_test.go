package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"revoice/internal/logging"
)

func TestCreateAndRelease(t *testing.T) {
	root := t.TempDir()
	ws, err := Create(root, "abc123")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ws.Dir != filepath.Join(root, "run-abc123") {
		t.Fatalf("unexpected dir %q", ws.Dir)
	}
	artifact := ws.Path("audio.wav")
	if filepath.Dir(artifact) != ws.Dir || !strings.Contains(filepath.Base(artifact), "abc123") {
		t.Fatalf("expected run id embedded in artifact path, got %q", artifact)
	}
	if err := os.WriteFile(artifact, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Fatal("expected workspace to be removed")
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestCreateRejectsDuplicateAndInvalidIDs(t *testing.T) {
	root := t.TempDir()
	if _, err := Create(root, "same"); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(root, "same"); err == nil {
		t.Fatal("expected error for an existing workspace")
	}
	for _, id := range []string{"", "  ", "../escape", `a\b`} {
		if _, err := Create(root, id); err == nil {
			t.Fatalf("expected error for run id %q", id)
		}
	}
}

func TestPathStripsDirectories(t *testing.T) {
	ws := &Workspace{RunID: "r1", Dir: "/work/run-r1"}
	if got := ws.Path("../../etc/passwd"); got != "/work/run-r1/r1-passwd" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	root := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldRun := filepath.Join(root, "run-old")
	foreign := filepath.Join(root, "keep-me")
	recentRun := filepath.Join(root, "run-recent")
	for _, dir := range []string{oldRun, foreign, recentRun} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, dir := range []string{oldRun, foreign} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatal(err)
		}
	}

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("expected only %s to be removed, got %v", oldRun, result.Removed)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("directory without run prefix should be kept")
	}
	if _, err := os.Stat(recentRun); err != nil {
		t.Error("recent workspace should be kept")
	}
}

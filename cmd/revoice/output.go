package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"revoice/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(colorize bool, color, value string) string {
	if !colorize || value == "" {
		return value
	}
	return color + value + ansiReset
}

func colorForStatus(status string) string {
	switch status {
	case "succeeded":
		return ansiGreen
	case "failed":
		return ansiRed
	case "running":
		return ansiYellow
	default:
		return ansiBlue
	}
}

// terminalDisplay prints pipeline artifacts as they become available.
type terminalDisplay struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func newTerminalDisplay(out io.Writer) *terminalDisplay {
	return &terminalDisplay{out: out, colorize: shouldColorize(out)}
}

func (d *terminalDisplay) Show(_ context.Context, artifact pipeline.Artifact) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch artifact.Kind {
	case pipeline.ArtifactOriginalVideo:
		fmt.Fprintf(d.out, "%s %s\n", paint(d.colorize, ansiBlue, "Original video:"), artifact.Path)
	case pipeline.ArtifactTranscript:
		fmt.Fprintf(d.out, "%s\n%s\n", paint(d.colorize, ansiBlue, "Transcript:"), indent(artifact.Text))
	case pipeline.ArtifactCorrected:
		fmt.Fprintf(d.out, "%s\n%s\n", paint(d.colorize, ansiBlue, "Corrected text:"), indent(artifact.Text))
	case pipeline.ArtifactFinalVideo:
		fmt.Fprintf(d.out, "%s %s\n", paint(d.colorize, ansiGreen, "Revoiced video:"), artifact.Path)
	default:
		fmt.Fprintf(d.out, "%s: %s%s\n", artifact.Kind, artifact.Path, artifact.Text)
	}
}

func indent(text string) string {
	if strings.TrimSpace(text) == "" {
		return "  (empty)"
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

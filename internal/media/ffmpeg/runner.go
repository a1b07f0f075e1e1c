package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner executes an external command and returns an error carrying
// its output on failure.
type commandRunner func(ctx context.Context, name string, args ...string) error

const maxOutputTail = 2048

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", err, tail(strings.TrimSpace(string(output))))
	}
	return nil
}

func tail(s string) string {
	if len(s) <= maxOutputTail {
		return s
	}
	return "..." + s[len(s)-maxOutputTail:]
}

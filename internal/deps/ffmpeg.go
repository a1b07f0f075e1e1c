package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type encoderLister func(ctx context.Context, binary string) ([]byte, error)

func listEncoders(ctx context.Context, binary string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, "-hide_banner", "-encoders").Output() //nolint:gosec
}

// CheckEncoders reports whether ffmpeg can encode with each codec. "copy"
// needs no encoder and is always available.
func CheckEncoders(ctx context.Context, ffmpegBinary string, codecs ...string) []Status {
	return checkEncoders(ctx, ffmpegBinary, listEncoders, codecs...)
}

func checkEncoders(ctx context.Context, ffmpegBinary string, list encoderLister, codecs ...string) []Status {
	results := make([]Status, 0, len(codecs))
	var available map[string]bool
	var listErr error
	for _, codec := range codecs {
		codec = strings.TrimSpace(codec)
		status := Status{
			Name:        "Encoder " + codec,
			Command:     ffmpegBinary,
			Description: "ffmpeg encoder used for the output video",
		}
		if codec == "" || codec == "copy" {
			status.Available = true
			results = append(results, status)
			continue
		}
		if available == nil && listErr == nil {
			out, err := list(ctx, ffmpegBinary)
			if err != nil {
				listErr = err
			} else {
				available = parseEncoders(out)
			}
		}
		switch {
		case listErr != nil:
			status.Detail = fmt.Sprintf("list encoders: %v", listErr)
		case available[codec]:
			status.Available = true
		default:
			status.Detail = fmt.Sprintf("encoder %q not supported by %s", codec, ffmpegBinary)
		}
		results = append(results, status)
	}
	return results
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder lines start with a
// six-character capability field such as "V....D" followed by the name.
func parseEncoders(out []byte) map[string]bool {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	pastHeader := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !pastHeader {
			if strings.HasPrefix(line, "------") {
				pastHeader = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

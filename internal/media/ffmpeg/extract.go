package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"revoice/internal/logging"
	"revoice/internal/services"
)

// Extractor decodes one audio stream of a video into a 16-bit PCM WAV.
type Extractor struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewExtractor constructs an extractor that invokes binary.
func NewExtractor(binary string, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Extractor{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "extractor"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Extractor) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// ExtractRequest describes one audio decode.
type ExtractRequest struct {
	VideoPath  string
	Ordinal    int // Position among audio streams (ffmpeg's 0:a:N)
	SampleRate int
	// Channels forces an output channel count. Zero keeps the source layout.
	Channels int
	Dest     string
}

// Extract writes the requested audio stream of VideoPath to Dest as 16-bit PCM.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) error {
	if e == nil {
		return services.Wrap(services.ErrExtraction, "extract", "init", "extractor not initialized", nil)
	}
	if strings.TrimSpace(req.VideoPath) == "" || strings.TrimSpace(req.Dest) == "" {
		return services.Wrap(services.ErrValidation, "extract", "arguments", "video and destination paths are required", nil)
	}
	if req.Ordinal < 0 {
		return services.Wrap(services.ErrExtraction, "extract", "select", "video has no audio stream", nil)
	}
	if req.SampleRate <= 0 {
		return services.Wrap(services.ErrValidation, "extract", "arguments", "sample rate must be positive", nil)
	}

	e.logger.Debug("executing ffmpeg audio extraction",
		logging.String("video_path", req.VideoPath),
		logging.Int("audio_ordinal", req.Ordinal),
		logging.Int("sample_rate", req.SampleRate),
		logging.Int("channels", req.Channels),
	)
	if err := e.run(ctx, e.binary, extractArgs(req)...); err != nil {
		_ = os.Remove(req.Dest)
		return services.Wrap(services.ErrExtraction, "extract", "ffmpeg", fmt.Sprintf("decode audio stream %d", req.Ordinal), err)
	}
	info, err := os.Stat(req.Dest)
	if err != nil {
		return services.Wrap(services.ErrExtraction, "extract", "ffmpeg", "ffmpeg did not produce audio output", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(req.Dest)
		return services.Wrap(services.ErrExtraction, "extract", "ffmpeg", "ffmpeg produced empty audio output", nil)
	}
	return nil
}

func extractArgs(req ExtractRequest) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", req.VideoPath,
		"-vn",
		"-map", "0:a:" + strconv.Itoa(req.Ordinal),
		"-ar", strconv.Itoa(req.SampleRate),
	}
	if req.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(req.Channels))
	}
	return append(args, "-c:a", "pcm_s16le", "-f", "wav", req.Dest)
}

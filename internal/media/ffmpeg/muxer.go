package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/media/ffprobe"
	"revoice/internal/media/pcm"
	"revoice/internal/services"
)

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// MuxRequest describes the inputs for replacing a video's audio track.
type MuxRequest struct {
	VideoPath  string // Source video whose first video stream is kept
	Audio      []byte // Synthesized WAV payload
	WorkDir    string // Directory for temporary audio files
	OutputPath string // Destination of the muxed container
}

// MuxResult reports the outcome of a mux.
type MuxResult struct {
	OutputPath   string
	VideoSeconds float64
	AudioSeconds float64 // Duration of the synthesized audio before fitting
	Passes       int     // Times the synthesized audio was played to fill the video
}

// Muxer fits synthesized audio to a video's duration and muxes the two with ffmpeg.
type Muxer struct {
	ffmpegBinary  string
	ffprobeBinary string
	videoCodec    string
	audioCodec    string
	logger        *slog.Logger
	run           commandRunner
	probe         probeFunc
}

// NewMuxer constructs a muxer from media settings.
func NewMuxer(cfg *config.Config, logger *slog.Logger) *Muxer {
	m := &Muxer{
		ffmpegBinary:  "ffmpeg",
		ffprobeBinary: "ffprobe",
		videoCodec:    "libx264",
		audioCodec:    "aac",
		logger:        logging.NewComponentLogger(logger, "muxer"),
		run:           defaultCommandRunner,
		probe:         ffprobe.Inspect,
	}
	if cfg != nil {
		m.ffmpegBinary = firstNonEmpty(cfg.Media.FFmpegBinary, m.ffmpegBinary)
		m.ffprobeBinary = firstNonEmpty(cfg.Media.FFprobeBinary, m.ffprobeBinary)
		m.videoCodec = firstNonEmpty(cfg.Media.VideoCodec, m.videoCodec)
		m.audioCodec = firstNonEmpty(cfg.Media.AudioCodec, m.audioCodec)
	}
	return m
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// WithProbe allows injecting a custom ffprobe implementation for tests.
func (m *Muxer) WithProbe(p probeFunc) {
	if m != nil && p != nil {
		m.probe = p
	}
}

// Mux writes OutputPath containing the first video stream of VideoPath and
// the synthesized audio looped or truncated to the video duration.
// The operation is atomic: a temporary sibling is renamed on success.
func (m *Muxer) Mux(ctx context.Context, req MuxRequest) (MuxResult, error) {
	if m == nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "init", "muxer not initialized", nil)
	}
	if strings.TrimSpace(req.VideoPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return MuxResult{}, services.Wrap(services.ErrValidation, "mux", "arguments", "video and output paths are required", nil)
	}
	if strings.TrimSpace(req.WorkDir) == "" {
		return MuxResult{}, services.Wrap(services.ErrValidation, "mux", "arguments", "work directory is required", nil)
	}
	if len(req.Audio) == 0 {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "decode", "synthesized audio is empty", nil)
	}

	rawPath, err := writeTemp(req.WorkDir, "synth-*.wav", req.Audio)
	if err != nil {
		return MuxResult{}, services.Wrap(services.ErrIO, "mux", "persist audio", "write synthesized audio", err)
	}
	defer m.remove(rawPath)

	probe, err := m.probe(ctx, m.ffprobeBinary, req.VideoPath)
	if err != nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "ffprobe", "inspect video", err)
	}
	if probe.VideoStreamCount() == 0 {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "ffprobe", "source has no video stream", nil)
	}
	videoSeconds := probe.DurationSeconds()
	if math.IsNaN(videoSeconds) || videoSeconds <= 0 {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "ffprobe", "video duration unavailable", nil)
	}

	clip, err := pcm.ReadFile(rawPath)
	if err != nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "decode", "decode synthesized audio", err)
	}
	target := pcm.TargetFrames(videoSeconds, clip.SampleRate())
	fitted, err := pcm.Fit(clip, target)
	if err != nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "fit", "align audio to video duration", err)
	}

	fittedPath, err := reserveTemp(req.WorkDir, "fitted-*.wav")
	if err != nil {
		return MuxResult{}, services.Wrap(services.ErrIO, "mux", "persist audio", "reserve fitted audio file", err)
	}
	defer m.remove(fittedPath)
	if err := pcm.WriteFile(fittedPath, fitted); err != nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "encode", "write fitted audio", err)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return MuxResult{}, services.Wrap(services.ErrIO, "mux", "output", "create output directory", err)
	}
	tmpPath := partialPath(req.OutputPath)
	args := m.muxArgs(req.VideoPath, fittedPath, tmpPath)

	m.logger.Debug("executing ffmpeg mux",
		logging.String("video_path", req.VideoPath),
		logging.String("output_path", req.OutputPath),
		logging.String("video_codec", m.videoCodec),
		logging.String("audio_codec", m.audioCodec),
	)
	if err := m.run(ctx, m.ffmpegBinary, args...); err != nil {
		m.remove(tmpPath)
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "ffmpeg", "mux video and audio", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return MuxResult{}, services.Wrap(services.ErrMux, "mux", "ffmpeg", "ffmpeg did not produce output file", err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		m.remove(tmpPath)
		return MuxResult{}, services.Wrap(services.ErrIO, "mux", "publish", "replace output file", err)
	}

	result := MuxResult{
		OutputPath:   req.OutputPath,
		VideoSeconds: videoSeconds,
		AudioSeconds: clip.Seconds(),
		Passes:       pcm.Repeats(clip.Frames(), target),
	}
	m.logger.Info("voice track muxed",
		logging.String(logging.FieldEventType, "mux_complete"),
		logging.String("output_path", result.OutputPath),
		logging.Float64("video_seconds", result.VideoSeconds),
		logging.Float64("audio_seconds", result.AudioSeconds),
		logging.Int("passes", result.Passes),
	)
	return result, nil
}

func (m *Muxer) muxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", m.videoCodec,
		"-c:a", m.audioCodec,
		"-map_metadata", "-1",
		"-fflags", "+bitexact",
		"-flags:v", "+bitexact",
		"-flags:a", "+bitexact",
		outputPath,
	}
}

func (m *Muxer) remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to remove temporary mux file",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldEventType, "mux_cleanup_failed"),
		)
	}
}

// partialPath keeps the extension so ffmpeg can infer the container.
func partialPath(output string) string {
	dir := filepath.Dir(output)
	base := filepath.Base(output)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf(".%s.partial%s", strings.TrimSuffix(base, ext), ext))
}

func writeTemp(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func reserveTemp(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

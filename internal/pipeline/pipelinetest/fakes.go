// Package pipelinetest provides in-memory collaborators for exercising a
// pipeline.Runner without ffmpeg or network services.
package pipelinetest

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"

	"revoice/internal/media/ffmpeg"
	"revoice/internal/media/ffprobe"
	"revoice/internal/testsupport"
)

// Prober reports one video stream and one audio stream.
type Prober struct {
	Channels int    // Defaults to 2
	Duration string // Defaults to "3"
	Err      error
	NoAudio  bool
}

// Inspect returns the configured streams.
func (p *Prober) Inspect(_ context.Context, _ string) (ffprobe.Result, error) {
	if p.Err != nil {
		return ffprobe.Result{}, p.Err
	}
	channels := p.Channels
	if channels == 0 {
		channels = 2
	}
	duration := p.Duration
	if duration == "" {
		duration = "3"
	}
	streams := []ffprobe.Stream{{Index: 0, CodecType: "video", CodecName: "h264"}}
	if !p.NoAudio {
		streams = append(streams, ffprobe.Stream{
			Index:      1,
			CodecType:  "audio",
			CodecName:  "aac",
			Channels:   channels,
			SampleRate: "16000",
			Tags:       map[string]string{"language": "eng"},
		})
	}
	return ffprobe.Result{Streams: streams, Format: ffprobe.Format{Duration: duration}}, nil
}

// Extractor writes a short 16-bit WAV with the requested layout.
type Extractor struct {
	T        testing.TB
	Channels int // Channels written when the request does not force a count; defaults to 2
	Err      error

	mu       sync.Mutex
	Requests []ffmpeg.ExtractRequest
}

// Extract records req and writes Dest.
func (e *Extractor) Extract(_ context.Context, req ffmpeg.ExtractRequest) error {
	e.mu.Lock()
	e.Requests = append(e.Requests, req)
	e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	channels := req.Channels
	if channels == 0 {
		channels = e.Channels
	}
	if channels == 0 {
		channels = 2
	}
	rate := req.SampleRate
	if rate <= 0 {
		rate = 100
	}
	samples := make([]int, rate/10*channels)
	for i := range samples {
		samples[i] = i % 50
	}
	testsupport.WriteWAV(e.T, req.Dest, rate, channels, samples)
	return nil
}

// Transcriber returns Text for every call.
type Transcriber struct {
	Text  string
	Err   error
	mu    sync.Mutex
	Paths []string
}

// Transcribe records the audio path.
func (f *Transcriber) Transcribe(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.Paths = append(f.Paths, path)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Corrector returns Text, or blocks until the context ends when Block is set.
type Corrector struct {
	Text   string
	Err    error
	Block  bool
	mu     sync.Mutex
	Inputs []string
}

// Correct records the transcript.
func (f *Corrector) Correct(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.Inputs = append(f.Inputs, text)
	f.mu.Unlock()
	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Synthesizer returns a mono WAV of Seconds length.
type Synthesizer struct {
	T       testing.TB
	Seconds float64 // Defaults to 1
	Err     error
	mu      sync.Mutex
	Inputs  []string
}

// Synthesize records the text.
func (f *Synthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.Inputs = append(f.Inputs, text)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	seconds := f.Seconds
	if seconds == 0 {
		seconds = 1
	}
	return testsupport.WAVBytes(f.T, 100, seconds), nil
}

// Muxer writes a placeholder container to the requested output.
type Muxer struct {
	Err      error
	mu       sync.Mutex
	Requests []ffmpeg.MuxRequest
}

// Mux records req and writes OutputPath.
func (f *Muxer) Mux(_ context.Context, req ffmpeg.MuxRequest) (ffmpeg.MuxResult, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return ffmpeg.MuxResult{}, f.Err
	}
	payload := "muxed:" + strconv.Itoa(len(req.Audio))
	if err := os.WriteFile(req.OutputPath, []byte(payload), 0o644); err != nil {
		return ffmpeg.MuxResult{}, err
	}
	return ffmpeg.MuxResult{OutputPath: req.OutputPath, VideoSeconds: 3, AudioSeconds: 1, Passes: 3}, nil
}

package ffprobe

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/testsupport"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "duration": "9.98"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "44100", "channels": 2,
     "tags": {"language": "eng"}, "disposition": {"default": 1}}
  ],
  "format": {"duration": "10.000000", "size": "2048", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestResultHelpers(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 9.98 {
		t.Fatalf("expected video stream duration, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 2048 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	audio := result.AudioStreams()[0]
	if audio.SampleRateHz() != 44100 || audio.Tags["language"] != "eng" || audio.Disposition["default"] != 1 {
		t.Fatalf("unexpected audio stream: %+v", audio)
	}
}

func TestDurationPrefersFirstVideoStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "99"},
			{CodecType: "video", Duration: "4.5"},
			{CodecType: "video", Duration: "5.25"},
		},
		Format: Format{Duration: "12.0"},
	}
	if got := result.DurationSeconds(); got != 4.5 {
		t.Fatalf("expected first video stream duration, got %v", got)
	}
}

func TestDurationFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   float64
	}{
		{
			name: "container when stream omits duration",
			result: Result{
				Streams: []Stream{{CodecType: "video"}, {CodecType: "audio", Duration: "99"}},
				Format:  Format{Duration: "7.5"},
			},
			want: 7.5,
		},
		{
			name: "container when stream duration is unparsable",
			result: Result{
				Streams: []Stream{{CodecType: "video", Duration: "N/A"}},
				Format:  Format{Duration: "6"},
			},
			want: 6,
		},
		{
			name: "longest stream when container is missing",
			result: Result{
				Streams: []Stream{{CodecType: "video"}, {CodecType: "video", Duration: "5.25"}, {CodecType: "video", Duration: "3"}},
			},
			want: 5.25,
		},
		{
			name: "longest stream when container is unparsable",
			result: Result{
				Streams: []Stream{{CodecType: "video"}, {CodecType: "video", Duration: "8"}},
				Format:  Format{Duration: "N/A"},
			},
			want: 8,
		},
		{
			name:   "nothing reported",
			result: Result{Streams: []Stream{{CodecType: "video"}}},
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.DurationSeconds(); got != tt.want {
				t.Fatalf("DurationSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if (Stream{SampleRate: "n/a"}).SampleRateHz() != 0 {
		t.Fatal("expected invalid sample rate to be 0")
	}
}

func TestInspectRunsBinary(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/bin/sh\ncat <<'JSON'\n" + samplePayload + "\nJSON\n"
	binary := testsupport.WriteStub(t, binDir, "ffprobe", script)

	result, err := Inspect(context.Background(), binary, filepath.Join(binDir, "clip.mp4"))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if result.DurationSeconds() != 9.98 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestInspectReportsStderr(t *testing.T) {
	binDir := t.TempDir()
	binary := testsupport.WriteStub(t, binDir, "ffprobe", "#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n")

	_, err := Inspect(context.Background(), binary, "broken.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

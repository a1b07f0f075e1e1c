package pcm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
)

const testRate = 100

func newClip(channels int, data []int) Clip {
	return Clip{
		Buffer: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: testRate},
			Data:   data,
		},
		BitDepth: 16,
	}
}

func ramp(frames, channels int) []int {
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = (i % 2000) - 1000
	}
	return data
}

func writeClip(t *testing.T, path string, clip Clip) {
	t.Helper()
	if err := WriteFile(path, clip); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDownmixAveragesStereo(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "stereo.wav")
	dest := filepath.Join(dir, "mono.wav")
	stereo := []int{3, 5, -3, -6, 32767, 32767, -32768, 32767, 0, 1}
	writeClip(t, src, newClip(2, stereo))

	got, err := Downmix(src, dest)
	if err != nil {
		t.Fatalf("Downmix returned error: %v", err)
	}
	if got != dest {
		t.Fatalf("expected dest path %q, got %q", dest, got)
	}

	mono, err := ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if mono.Channels() != 1 || mono.SampleRate() != testRate || mono.BitDepth != 16 {
		t.Fatalf("unexpected mono format: channels=%d rate=%d depth=%d", mono.Channels(), mono.SampleRate(), mono.BitDepth)
	}
	if mono.Frames() != len(stereo)/2 {
		t.Fatalf("expected %d frames, got %d", len(stereo)/2, mono.Frames())
	}
	for i := 0; i < mono.Frames(); i++ {
		x, y := stereo[2*i], stereo[2*i+1]
		if want := (x + y) / 2; mono.Buffer.Data[i] != want {
			t.Fatalf("frame %d: got %d want (%d+%d)/2=%d", i, mono.Buffer.Data[i], x, y, want)
		}
	}
}

func TestDownmixKeepsMonoPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mono.wav")
	dest := filepath.Join(dir, "never.wav")
	writeClip(t, src, newClip(1, []int{1, 2, 3, 4}))

	got, err := Downmix(src, dest)
	if err != nil {
		t.Fatalf("Downmix returned error: %v", err)
	}
	if got != src {
		t.Fatalf("expected original path, got %q", got)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file to be created, stat err=%v", err)
	}
}

func TestDownmixLeavesSurroundUntouched(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "surround.wav")
	dest := filepath.Join(dir, "never.wav")
	writeClip(t, src, newClip(6, ramp(10, 6)))

	got, err := Downmix(src, dest)
	if err != nil {
		t.Fatalf("Downmix returned error: %v", err)
	}
	if got != src {
		t.Fatalf("expected original path for 6 channels, got %q", got)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no file to be created")
	}
}

func TestDownmixMissingSource(t *testing.T) {
	if _, err := Downmix(filepath.Join(t.TempDir(), "missing.wav"), "out.wav"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestFitLoopsShortAudio(t *testing.T) {
	// 4 seconds of synthesized audio against a 10 second video.
	src := ramp(4*testRate, 1)
	target := TargetFrames(10, testRate)

	fitted, err := Fit(newClip(1, src), target)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if fitted.Frames() != target {
		t.Fatalf("expected %d frames, got %d", target, fitted.Frames())
	}
	if fitted.Seconds() != 10 {
		t.Fatalf("expected 10s, got %v", fitted.Seconds())
	}
	for i, sample := range fitted.Buffer.Data {
		if sample != src[i%len(src)] {
			t.Fatalf("frame %d: got %d want %d", i, sample, src[i%len(src)])
		}
	}
	if Repeats(len(src), target) != 3 {
		t.Fatalf("expected three passes, got %d", Repeats(len(src), target))
	}
}

func TestFitTruncatesLongAudio(t *testing.T) {
	// 8 seconds of synthesized audio against a 5 second video.
	src := ramp(8*testRate, 1)
	target := TargetFrames(5, testRate)

	fitted, err := Fit(newClip(1, src), target)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if fitted.Seconds() != 5 {
		t.Fatalf("expected 5s, got %v", fitted.Seconds())
	}
	for i, sample := range fitted.Buffer.Data {
		if sample != src[i] {
			t.Fatalf("frame %d: got %d want %d", i, sample, src[i])
		}
	}
}

func TestFitEqualLengthUnchanged(t *testing.T) {
	clip := newClip(1, ramp(3*testRate, 1))
	fitted, err := Fit(clip, 3*testRate)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if fitted.Buffer != clip.Buffer {
		t.Fatal("expected equal-length clip to be returned unchanged")
	}
}

func TestFitKeepsFramesAligned(t *testing.T) {
	src := []int{1, -1, 2, -2, 3, -3}
	fitted, err := Fit(newClip(2, src), 7)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	want := []int{1, -1, 2, -2, 3, -3, 1, -1, 2, -2, 3, -3, 1, -1}
	if len(fitted.Buffer.Data) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(fitted.Buffer.Data))
	}
	for i := range want {
		if fitted.Buffer.Data[i] != want[i] {
			t.Fatalf("sample %d: got %d want %d", i, fitted.Buffer.Data[i], want[i])
		}
	}
}

func TestFitRejectsEmptyAudio(t *testing.T) {
	if _, err := Fit(newClip(1, nil), 100); err == nil {
		t.Fatal("expected error for empty audio")
	}
	if _, err := Fit(newClip(1, []int{1}), 0); err == nil {
		t.Fatal("expected error for zero target")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts.wav")
	writeClip(t, path, newClip(1, ramp(50, 1)))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}

	clip, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if clip.Frames() != 50 || clip.SampleRate() != testRate {
		t.Fatalf("unexpected clip: frames=%d rate=%d", clip.Frames(), clip.SampleRate())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := Decode([]byte("definitely not a riff header")); err == nil {
		t.Fatal("expected error for non-wav payload")
	}
}

func TestTargetFrames(t *testing.T) {
	cases := []struct {
		seconds float64
		rate    int
		want    int
	}{
		{10, 44100, 441000},
		{2.5, 100, 250},
		{0.0049, 100, 0},
		{0.006, 100, 1},
		{-1, 100, 0},
		{1, 0, 0},
	}
	for _, tc := range cases {
		if got := TargetFrames(tc.seconds, tc.rate); got != tc.want {
			t.Fatalf("TargetFrames(%v, %d) = %d, want %d", tc.seconds, tc.rate, got, tc.want)
		}
	}
}

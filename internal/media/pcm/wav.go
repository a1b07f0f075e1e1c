package pcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Clip is decoded linear PCM audio with interleaved samples.
type Clip struct {
	Buffer   *audio.IntBuffer
	BitDepth int
}

// Channels returns the interleaved channel count.
func (c Clip) Channels() int {
	if c.Buffer == nil || c.Buffer.Format == nil {
		return 0
	}
	return c.Buffer.Format.NumChannels
}

// SampleRate returns the sample rate in Hz.
func (c Clip) SampleRate() int {
	if c.Buffer == nil || c.Buffer.Format == nil {
		return 0
	}
	return c.Buffer.Format.SampleRate
}

// Frames returns the number of sample frames (one sample per channel).
func (c Clip) Frames() int {
	if c.Channels() == 0 {
		return 0
	}
	return len(c.Buffer.Data) / c.Channels()
}

// Seconds returns the clip duration.
func (c Clip) Seconds() float64 {
	if c.SampleRate() == 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate())
}

// ReadFile decodes a PCM WAV file.
func ReadFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	clip, err := decode(f)
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return clip, nil
}

// Decode parses PCM WAV bytes such as a LINEAR16 synthesis response.
func Decode(data []byte) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, errors.New("decode wav: empty payload")
	}
	clip, err := decode(bytes.NewReader(data))
	if err != nil {
		return Clip{}, fmt.Errorf("decode wav: %w", err)
	}
	return clip, nil
}

func decode(r io.ReadSeeker) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, errors.New("not a valid wav file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return Clip{}, fmt.Errorf("unsupported wav encoding %d (want linear pcm)", dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, err
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return Clip{}, errors.New("wav has no channels")
	}
	return Clip{Buffer: buf, BitDepth: int(dec.BitDepth)}, nil
}

// WriteFile encodes clip as a PCM WAV at path, keeping its rate, channels, and bit depth.
func WriteFile(path string, clip Clip) (err error) {
	if clip.Channels() == 0 {
		return errors.New("write wav: clip has no format")
	}
	bitDepth := clip.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close wav: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	enc := wav.NewEncoder(f, clip.SampleRate(), bitDepth, clip.Channels(), wavFormatPCM)
	if err := enc.Write(clip.Buffer); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// TargetFrames converts a duration to a frame count at sampleRate, rounding to the nearest frame.
func TargetFrames(seconds float64, sampleRate int) int {
	if seconds <= 0 || sampleRate <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return int(math.Round(seconds * float64(sampleRate)))
}

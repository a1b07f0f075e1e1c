package pcm

import (
	"fmt"

	"github.com/go-audio/audio"
)

// Downmix averages the two channels of a stereo WAV into a mono WAV written to
// dest and returns dest. Any other channel count returns src untouched and
// writes nothing. The sample rate and bit depth are preserved.
func Downmix(src, dest string) (string, error) {
	clip, err := ReadFile(src)
	if err != nil {
		return "", err
	}
	if clip.Channels() != 2 {
		return src, nil
	}
	if err := WriteFile(dest, Mono(clip)); err != nil {
		return "", fmt.Errorf("write mono: %w", err)
	}
	return dest, nil
}

// Mono returns a single-channel clip whose frames are (left+right)/2 of a stereo clip.
// Clips that are not stereo are returned as-is.
func Mono(clip Clip) Clip {
	if clip.Channels() != 2 {
		return clip
	}
	frames := clip.Frames()
	out := make([]int, frames)
	data := clip.Buffer.Data
	for i := 0; i < frames; i++ {
		out[i] = (data[2*i] + data[2*i+1]) / 2
	}
	return Clip{
		Buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: clip.SampleRate()},
			Data:           out,
			SourceBitDepth: clip.Buffer.SourceBitDepth,
		},
		BitDepth: clip.BitDepth,
	}
}

package pcm

import (
	"errors"

	"github.com/go-audio/audio"
)

// Fit returns a clip of exactly targetFrames frames. Longer clips keep their
// leading frames. Shorter clips repeat from the start until the target is
// covered and the overshoot is cut. A clip already at the target is returned
// unchanged.
func Fit(clip Clip, targetFrames int) (Clip, error) {
	if targetFrames <= 0 {
		return Clip{}, errors.New("fit audio: target duration must be positive")
	}
	frames := clip.Frames()
	if frames == 0 {
		return Clip{}, errors.New("fit audio: synthesized audio is empty")
	}
	if frames == targetFrames {
		return clip, nil
	}

	channels := clip.Channels()
	want := targetFrames * channels
	src := clip.Buffer.Data[:frames*channels]
	out := make([]int, want)
	if frames > targetFrames {
		copy(out, src[:want])
	} else {
		for filled := 0; filled < want; {
			filled += copy(out[filled:], src)
		}
	}

	return Clip{
		Buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: clip.SampleRate()},
			Data:           out,
			SourceBitDepth: clip.Buffer.SourceBitDepth,
		},
		BitDepth: clip.BitDepth,
	}, nil
}

// Repeats reports how many whole or partial passes of a clip of frames are needed to cover targetFrames.
func Repeats(frames, targetFrames int) int {
	if frames <= 0 || targetFrames <= 0 {
		return 0
	}
	return (targetFrames + frames - 1) / frames
}

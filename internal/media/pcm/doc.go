// Package pcm reads and writes linear PCM WAV audio and performs the two
// sample-level transforms revoice needs: stereo-to-mono downmixing for speech
// recognition and fitting synthesized speech to a video's duration.
//
// Samples are handled as interleaved integers via go-audio's IntBuffer. No
// resampling or filtering is performed.
package pcm

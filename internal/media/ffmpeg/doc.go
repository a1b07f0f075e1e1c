// Package ffmpeg wraps the ffmpeg invocations revoice needs: decoding the
// dialogue track of a video to linear PCM and re-multiplexing the original
// video stream with a synthesized voice track.
//
// Commands run through an injectable runner so tests can assert arguments
// and fabricate outputs without the real binaries.
package ffmpeg

// Package ffprobe runs ffprobe and decodes its JSON report.
//
// Inspect returns a Result with the container Format and every Stream. The
// pipeline reads the video duration from it and hands the audio streams to
// the speech track selector. Prober binds a binary path so callers can
// depend on a small interface.
package ffprobe

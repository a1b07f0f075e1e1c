// Package audio chooses which audio stream of an uploaded video carries the
// dialogue to transcribe.
//
// Candidates are ranked by language match against the configured recognition
// language (BCP 47 and ISO 639-2 tags both resolve to a base language), then
// by whether the track is commentary or audio description, then by the default
// disposition. Containers with a single audio stream always select it.
package audio

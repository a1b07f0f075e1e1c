// Package pipeline runs one video through the re-voicing stages.
//
// A Runner stages the upload into a per-run workspace, picks the speech
// track, extracts and downmixes it, transcribes, corrects, synthesizes, and
// muxes the synthesized voice back over the original video stream. Each
// stage is a single blocking call to a collaborator; any failure ends the
// run in StateFailed with the workspace removed and no output written.
//
// Collaborators are interfaces so the HTTP API, the CLI, and tests can wire
// real Google and LLM clients or fakes. An optional Recorder receives state
// transitions for the run history, and an optional Display receives the
// original video, transcript, corrected text, and final video in that order.
package pipeline

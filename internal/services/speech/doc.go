// Package speech transcribes mono linear PCM audio with Google Cloud
// Speech-to-Text.
//
// Client.Transcribe sends one synchronous recognition request and joins the
// top alternative of every result with single spaces. Transient gRPC
// failures are retried under the configured bounded policy.
package speech

// Package services defines shared utilities consumed by the pipeline stages
// and the external service clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage failure
//     carries a classification (transcription, correction, synthesis, mux, io)
//     alongside the underlying cause.
//
// Subpackages hold the clients for the speech, language model, and synthesis
// collaborators together with the retry policy they share.
package services

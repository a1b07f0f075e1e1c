// Package tts synthesizes the corrected transcript with Google Cloud
// Text-to-Speech, returning a LINEAR16 WAV payload.
package tts

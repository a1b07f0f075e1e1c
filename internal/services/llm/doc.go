// Package llm corrects speech transcripts with a chat completion model.
//
// The Corrector talks to Azure OpenAI (deployment + api version) or any
// OpenAI-compatible endpoint through github.com/sashabaranov/go-openai and
// sends a single fixed instruction asking the model to fix grammar and drop
// filler words.
//
// # Retry Behaviour
//
// HTTP 408/429/5xx, network timeouts, and empty completions are retried
// under the configured bounded policy. Authentication failures and other
// client errors fail immediately. Context cancellation aborts retries.
package llm

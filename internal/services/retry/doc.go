// Package retry wraps calls to external services in a bounded retry policy.
//
// Every attempt may carry its own timeout, and delays between attempts grow
// exponentially from BaseDelay up to MaxDelay. Callers supply a Classifier
// that knows which failures of their collaborator are transient (rate limits,
// unavailable backends, timeouts) and which should abort immediately.
// Context cancellation always aborts without further attempts.
package retry

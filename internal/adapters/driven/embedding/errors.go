// Package embedding holds the embedding provider adapters and what they share.
//
// Subpackages:
//   - ollama: local Ollama server, batch /api/embed endpoint
//   - openai: OpenAI-compatible /embeddings endpoint
//   - resilient: batching, rate limiting, retries and circuit breaking around any provider
package embedding

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx HTTP response from an embedding provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s error (status %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
// Client errors are final except for rate limiting and request timeouts.
func (e *StatusError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return false
	default:
		return true
	}
}

// IsPermanent reports whether err is a provider response that retrying cannot fix.
func IsPermanent(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return !se.Retryable()
	}
	return false
}

// Package llm abstracts the answer-generation model behind a Provider
// interface so local and hosted backends are interchangeable.
package llm

import "context"

// Provider defines the interface for LLM backends.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Package llm is the inference collaborator for the agent loop: a thin,
// provider-agnostic client that takes a system instruction, a user prompt, a
// reproducibility seed, and a max output length, and returns free text.
//
// The loop varies the seed per turn for natural variation while staying
// reproducible for a fixed run seed, so implementations must honor it.
package llm

import "context"

// Request is a single blocking completion request.
type Request struct {
	System    string // fixed system instruction
	Prompt    string // per-turn contextual prompt
	Seed      int    // reproducibility seed, varied per turn
	MaxTokens int    // maximum output length; 0 means the client default
}

// Client produces a completion for a request. Calls block until the provider
// responds; callers needing bounded latency wrap the context with a deadline.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

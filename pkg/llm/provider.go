// Package llm provides abstractions for the remote language-model backends
// the assistant falls back to on a cache miss.
//
// Providers handle API communication with a generation endpoint and return
// the complete answer text. The assistant layer is responsible for caching,
// transcripts, and user-facing fallbacks, which keeps providers reusable and
// independently testable.
package llm

import "context"

// Options carries the generation parameters forwarded to the backend.
// Backends ignore parameters they do not support.
type Options struct {
	// SystemPrompt is prepended as the system message when non-empty.
	SystemPrompt string

	// Sampling parameters.
	TopP          float64
	TopK          int
	RepeatPenalty float64
	MinP          float64

	// Seed makes generation reproducible when non-negative; a negative
	// value leaves seeding to the backend.
	Seed int
}

// Provider defines the interface for language-model integrations.
type Provider interface {
	// Generate sends prompt to the model and returns the full answer text.
	// It blocks until the backend responds or ctx is done.
	Generate(ctx context.Context, prompt string, opts *Options) (string, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}

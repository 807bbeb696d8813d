package llm

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by a provider that has no credentials configured.
// Callers treat it as a degraded-mode signal, not a failure.
var ErrUnavailable = errors.New("llm: provider not configured")

// Provider is the interface all LLM backends must implement.
type Provider interface {
	// Complete sends a prompt and returns a completion.
	Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error)
	// Embed returns embedding vectors for the given texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name returns the provider identifier (e.g. "openai", "gemini").
	Name() string
	// Available reports whether the provider can actually reach a backend.
	// A provider constructed without credentials returns false and its
	// Complete/Embed calls fail with ErrUnavailable without network I/O.
	Available() bool
}

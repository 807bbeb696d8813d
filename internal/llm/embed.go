package llm

import (
	"context"
	"log/slog"
)

// EmbedOne returns the embedding vector for a single text, or nil.
//
// Nil is returned in two distinct situations that callers treat identically:
// the provider is unconfigured (silent, expected operating mode) or the
// provider call failed (logged with a component tag). Either way the caller
// degrades: nil embeddings are excluded from similarity scoring and the
// keyword fallback picks up the slack. This function never returns an error.
func EmbedOne(ctx context.Context, p Provider, text string) []float32 {
	if p == nil || !p.Available() || text == "" {
		return nil
	}

	vecs, err := p.Embed(ctx, []string{text})
	if err != nil {
		slog.Warn("embedding call failed", "component", "llm", "provider", p.Name(), "error", err)
		return nil
	}
	if len(vecs) == 0 {
		return nil
	}
	return vecs[0]
}

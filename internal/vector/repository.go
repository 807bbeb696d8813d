// Package vector provides an optional external index for FAQ embeddings.
// Deployments whose FAQ sets outgrow in-process scoring index them here; the
// retrieval engine then delegates the similarity search to the index while
// keeping the same threshold and ranking semantics.
package vector

import "context"

// Document is an indexed FAQ with its embedding.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// SearchResult is a single match from a similarity search.
type SearchResult struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]string
}

// Repository provides vector storage and similarity search.
type Repository interface {
	// Upsert inserts or updates documents.
	Upsert(ctx context.Context, docs []Document) error
	// Search finds the top-k most similar documents. The filter constrains
	// matches by exact metadata values and is applied by the backend, so a
	// tenant's results are never crowded out of the global top-k by other
	// tenants' documents. A nil filter searches the whole collection.
	Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]SearchResult, error)
	// Close releases resources.
	Close() error
}

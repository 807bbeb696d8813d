package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/tenant"
)

// DefaultTTL is how long a cached FAQ embedding set stays valid.
const DefaultTTL = 30 * time.Minute

// FAQEmbedding pairs an FAQ with the embedding of its combined text. The
// embedding is nil when the provider was unavailable or failed for that
// entry; such entries stay in the set (so keyword search still sees the FAQ)
// but are skipped during similarity scoring.
type FAQEmbedding struct {
	FAQ       tenant.FAQ `json:"faq"`
	Embedding []float32  `json:"embedding"`
	Text      string     `json:"text"`
}

// EmbeddingCache stores precomputed FAQ embeddings per tenant key. Entries
// are immutable value snapshots replaced wholesale on expiry; there is no
// content-based invalidation, so FAQ-editing workflows must call Clear.
type EmbeddingCache interface {
	// Get returns the cached embedding set for key, recomputing it from faqs
	// when absent or expired. Never returns an error: provider failures leave
	// nil embeddings in the returned set.
	Get(ctx context.Context, key string, faqs []tenant.FAQ) []FAQEmbedding
	// Clear removes a single tenant key.
	Clear(ctx context.Context, key string)
	// ClearAll removes every key.
	ClearAll(ctx context.Context)
}

// CacheKey maps an optional tenant ID to its cache key.
func CacheKey(tenantID string) string {
	if tenantID == "" {
		return "default"
	}
	return tenantID
}

// EmbeddingText is the canonical text embedded for an FAQ.
func EmbeddingText(f tenant.FAQ) string {
	return fmt.Sprintf("%s: %s", f.Question, f.Answer)
}

func computeEmbeddings(ctx context.Context, provider llm.Provider, faqs []tenant.FAQ) []FAQEmbedding {
	out := make([]FAQEmbedding, len(faqs))
	for i, f := range faqs {
		text := EmbeddingText(f)
		out[i] = FAQEmbedding{
			FAQ:       f,
			Embedding: llm.EmbedOne(ctx, provider, text),
			Text:      text,
		}
	}
	return out
}

type memoryEntry struct {
	embeddings []FAQEmbedding
	storedAt   time.Time
}

// MemoryCache is an in-process EmbeddingCache. The lock guards only the map;
// recomputation happens outside it, so two requests racing through the same
// expiry window may both call the provider and the last write wins. Entries
// are immutable snapshots, so readers never see partial state.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	provider llm.Provider
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryCache creates a MemoryCache. A nonpositive ttl falls back to
// DefaultTTL.
func NewMemoryCache(provider llm.Provider, ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, faqs []tenant.FAQ) []FAQEmbedding {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.storedAt) < c.ttl {
		return entry.embeddings
	}

	fresh := computeEmbeddings(ctx, c.provider, faqs)

	c.mu.Lock()
	c.entries[key] = memoryEntry{embeddings: fresh, storedAt: c.now()}
	c.mu.Unlock()

	return fresh
}

func (c *MemoryCache) Clear(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *MemoryCache) ClearAll(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

var _ EmbeddingCache = (*MemoryCache)(nil)

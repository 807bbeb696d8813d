package vector

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/tenant"
)

// Metadata keys stamped on every indexed FAQ.
const (
	MetaTenant   = "tenant"
	MetaQuestion = "question"
	MetaAnswer   = "answer"
)

// Indexer embeds tenant FAQs and upserts them into the vector index.
type Indexer struct {
	provider llm.Provider
	repo     Repository
}

// NewIndexer creates an Indexer.
func NewIndexer(provider llm.Provider, repo Repository) *Indexer {
	return &Indexer{provider: provider, repo: repo}
}

// IndexFAQs embeds every FAQ (question + answer) under the given tenant key
// and upserts the batch. Unlike the query path, indexing is an operator
// action, so provider failures are returned rather than swallowed.
func (ix *Indexer) IndexFAQs(ctx context.Context, tenantKey string, faqs []tenant.FAQ) error {
	if ix.provider == nil || !ix.provider.Available() {
		return llm.ErrUnavailable
	}
	if len(faqs) == 0 {
		return nil
	}

	texts := make([]string, len(faqs))
	for i, f := range faqs {
		texts[i] = fmt.Sprintf("%s: %s", f.Question, f.Answer)
	}

	vectors, err := ix.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}

	docs := make([]Document, len(faqs))
	for i, f := range faqs {
		docs[i] = Document{
			ID:      newUUID(),
			Content: texts[i],
			Vector:  vectors[i],
			Metadata: map[string]string{
				MetaTenant:   tenantKey,
				MetaQuestion: f.Question,
				MetaAnswer:   f.Answer,
			},
		}
	}
	return ix.repo.Upsert(ctx, docs)
}

func newUUID() string {
	// Minimal UUIDv4 generator to avoid an extra dependency.
	var b [16]byte
	_, _ = rand.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10

	var out [36]byte
	hex.Encode(out[0:8], b[0:4])
	out[8] = '-'
	hex.Encode(out[9:13], b[4:6])
	out[13] = '-'
	hex.Encode(out[14:18], b[6:8])
	out[18] = '-'
	hex.Encode(out[19:23], b[8:10])
	out[23] = '-'
	hex.Encode(out[24:36], b[10:16])
	return string(out[:])
}

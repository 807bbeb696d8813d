package rag

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/tenant"
	"github.com/scriptishrx/concierge/internal/vector"
)

const (
	// SimilarityThreshold is the minimum cosine score a semantic match must
	// reach; results below it are discarded entirely, not deprioritized.
	SimilarityThreshold = 0.3
	// KeywordScore is the fixed score assigned to every keyword match.
	KeywordScore = 0.5
	// DefaultTopK bounds semantic result sets when the caller passes no limit.
	DefaultTopK = 3
)

// Result is a single ranked retrieval match.
type Result struct {
	FAQ   tenant.FAQ `json:"faq"`
	Score float64    `json:"score"`
}

// Engine orchestrates tenant-scoped FAQ retrieval: embedding-based cosine
// ranking with a keyword fallback.
type Engine struct {
	provider llm.Provider
	tenants  *tenant.Accessor
	cache    EmbeddingCache
	index    vector.Repository // optional external index; nil = in-process scoring
	tracer   trace.Tracer
}

// NewEngine creates an Engine. index may be nil.
func NewEngine(provider llm.Provider, tenants *tenant.Accessor, cache EmbeddingCache, index vector.Repository) *Engine {
	return &Engine{
		provider: provider,
		tenants:  tenants,
		cache:    cache,
		index:    index,
		tracer:   otel.Tracer("github.com/scriptishrx/concierge/internal/rag"),
	}
}

// SemanticSearch ranks the tenant's FAQs against the query by cosine
// similarity. It degrades to an empty result set, never an error, when the
// provider is unavailable, the FAQ set is empty, or the query embedding
// cannot be produced.
func (e *Engine) SemanticSearch(ctx context.Context, query, tenantID string, topK int) ([]Result, string) {
	ctx, span := e.tracer.Start(ctx, "rag.SemanticSearch",
		trace.WithAttributes(attribute.String("tenant", CacheKey(tenantID))))
	defer span.End()

	if topK <= 0 {
		topK = DefaultTopK
	}

	faqs, name := e.tenants.TenantFAQs(ctx, tenantID)
	if e.provider == nil || !e.provider.Available() || len(faqs) == 0 {
		return nil, name
	}

	queryVec := llm.EmbedOne(ctx, e.provider, query)
	if queryVec == nil {
		return nil, name
	}

	if e.index != nil {
		if results, ok := e.indexSearch(ctx, queryVec, tenantID, topK); ok {
			span.SetAttributes(attribute.Int("results", len(results)))
			return results, name
		}
		// Index failure falls through to in-process scoring.
	}

	embeddings := e.cache.Get(ctx, CacheKey(tenantID), faqs)

	var scored []Result
	for _, fe := range embeddings {
		if fe.Embedding == nil {
			continue
		}
		scored = append(scored, Result{
			FAQ:   fe.FAQ,
			Score: cosineSimilarity(queryVec, fe.Embedding),
		})
	}

	// Stable sort keeps ties in encounter order; tie ordering is not a
	// business-logic contract.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}

	var results []Result
	for _, r := range scored {
		if r.Score >= SimilarityThreshold {
			results = append(results, r)
		}
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, name
}

// indexSearch delegates scoring to the external vector index, constrained to
// the tenant's documents by a backend-side metadata filter. The second return
// is false when the index call failed and the in-process path should be used
// instead.
func (e *Engine) indexSearch(ctx context.Context, queryVec []float32, tenantID string, topK int) ([]Result, bool) {
	hits, err := e.index.Search(ctx, queryVec, topK, map[string]string{vector.MetaTenant: CacheKey(tenantID)})
	if err != nil {
		slog.Warn("vector index search failed", "component", "rag", "error", err)
		return nil, false
	}

	var results []Result
	for _, h := range hits {
		if float64(h.Score) < SimilarityThreshold {
			continue
		}
		results = append(results, Result{
			FAQ: tenant.FAQ{
				Question: h.Metadata[vector.MetaQuestion],
				Answer:   h.Metadata[vector.MetaAnswer],
			},
			Score: float64(h.Score),
		})
		if len(results) == topK {
			break
		}
	}
	return results, true
}

// KeywordSearch is the fallback matcher. An FAQ matches when the lowercased
// query contains one of its configured keywords (that direction exactly: a
// short keyword inside a long query), or when the query appears inside the
// FAQ's own question or answer text. Every match scores KeywordScore; no
// threshold is applied.
func (e *Engine) KeywordSearch(ctx context.Context, query, tenantID string) ([]Result, string) {
	ctx, span := e.tracer.Start(ctx, "rag.KeywordSearch",
		trace.WithAttributes(attribute.String("tenant", CacheKey(tenantID))))
	defer span.End()

	faqs, name := e.tenants.TenantFAQs(ctx, tenantID)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, name
	}

	var results []Result
	for _, f := range faqs {
		if keywordMatch(q, f) {
			results = append(results, Result{FAQ: f, Score: KeywordScore})
		}
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, name
}

func keywordMatch(q string, f tenant.FAQ) bool {
	for _, kw := range f.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(q, kw) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(f.Question), q) ||
		strings.Contains(strings.ToLower(f.Answer), q)
}

// ClearCache drops cached embeddings for one tenant, or for every tenant when
// tenantID is empty. FAQ-editing workflows must call this after any content
// change; the cache has no content-based invalidation.
func (e *Engine) ClearCache(ctx context.Context, tenantID string) {
	if tenantID == "" {
		e.cache.ClearAll(ctx)
		return
	}
	e.cache.Clear(ctx, CacheKey(tenantID))
}

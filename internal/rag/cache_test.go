package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/tenant"
)

// vectorProvider embeds texts from a fixed lookup table and counts calls.
type vectorProvider struct {
	vectors    map[string][]float32
	embedCalls int
	completion string
	failEmbed  bool
}

func (p *vectorProvider) Complete(_ context.Context, _ *llm.Prompt, _ *llm.RequestOptions) (*llm.Response, error) {
	if p.completion == "" {
		return nil, errors.New("no completion configured")
	}
	return &llm.Response{Content: p.completion}, nil
}

func (p *vectorProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	p.embedCalls++
	if p.failEmbed {
		return nil, errors.New("503 Service Unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vectors[t] // nil when unmapped
	}
	return out, nil
}

func (p *vectorProvider) Name() string    { return "mock" }
func (p *vectorProvider) Available() bool { return true }

func testFAQs() []tenant.FAQ {
	return []tenant.FAQ{
		{Question: "Office Location", Answer: "We are in Chicago.", Keywords: []string{"location", "address"}},
		{Question: "Opening Hours", Answer: "We open at 9am.", Keywords: []string{"hours", "open"}},
	}
}

func TestMemoryCache_HitWithinTTL(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{
		EmbeddingText(faqs[0]): {1, 0, 0},
		EmbeddingText(faqs[1]): {0, 1, 0},
	}}
	cache := NewMemoryCache(p, DefaultTTL)
	ctx := context.Background()

	first := cache.Get(ctx, "default", faqs)
	if p.embedCalls != len(faqs) {
		t.Fatalf("expected %d embed calls on miss, got %d", len(faqs), p.embedCalls)
	}

	second := cache.Get(ctx, "default", faqs)
	if p.embedCalls != len(faqs) {
		t.Errorf("expected no further embed calls on hit, got %d total", p.embedCalls)
	}
	if len(second) != len(first) {
		t.Fatalf("expected identical entry count, got %d vs %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Text != first[i].Text {
			t.Errorf("entry %d text changed across hits", i)
		}
		if cosineSimilarity(second[i].Embedding, first[i].Embedding) < 0.999 {
			t.Errorf("entry %d embedding changed across hits", i)
		}
	}
}

func TestMemoryCache_ExpiryRecomputes(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	cache := NewMemoryCache(p, 30*time.Minute)
	ctx := context.Background()

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Get(ctx, "default", faqs)
	callsAfterFirst := p.embedCalls

	current = current.Add(31 * time.Minute)
	cache.Get(ctx, "default", faqs)
	if p.embedCalls == callsAfterFirst {
		t.Error("expected recompute after TTL expiry")
	}
}

func TestMemoryCache_EmbeddingTextFormat(t *testing.T) {
	f := tenant.FAQ{Question: "Where?", Answer: "Chicago."}
	if got := EmbeddingText(f); got != "Where?: Chicago." {
		t.Errorf("expected %q, got %q", "Where?: Chicago.", got)
	}
}

func TestMemoryCache_ProviderFailurePreservesPairing(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{failEmbed: true}
	cache := NewMemoryCache(p, DefaultTTL)

	entries := cache.Get(context.Background(), "default", faqs)
	if len(entries) != len(faqs) {
		t.Fatalf("expected %d entries despite provider failure, got %d", len(faqs), len(entries))
	}
	for i, e := range entries {
		if e.Embedding != nil {
			t.Errorf("entry %d: expected nil embedding on provider failure", i)
		}
		if e.FAQ.Question != faqs[i].Question {
			t.Errorf("entry %d: FAQ pairing lost", i)
		}
	}
}

func TestMemoryCache_ClearForcesRecompute(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	cache := NewMemoryCache(p, DefaultTTL)
	ctx := context.Background()

	cache.Get(ctx, "acme", faqs)
	callsAfterFirst := p.embedCalls

	cache.Clear(ctx, "acme")
	cache.Get(ctx, "acme", faqs)
	if p.embedCalls == callsAfterFirst {
		t.Error("expected at least one new embed call after Clear")
	}
}

func TestMemoryCache_ClearAllEmptiesEveryKey(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	cache := NewMemoryCache(p, DefaultTTL)
	ctx := context.Background()

	cache.Get(ctx, "acme", faqs)
	cache.Get(ctx, "globex", faqs)
	callsAfterWarm := p.embedCalls

	cache.ClearAll(ctx)
	cache.Get(ctx, "acme", faqs)
	cache.Get(ctx, "globex", faqs)
	if p.embedCalls != callsAfterWarm*2 {
		t.Errorf("expected full recompute for both keys, got %d calls (warm: %d)", p.embedCalls, callsAfterWarm)
	}
}

func TestMemoryCache_ClearOneKeyLeavesOthers(t *testing.T) {
	faqs := testFAQs()
	p := &vectorProvider{vectors: map[string][]float32{}}
	cache := NewMemoryCache(p, DefaultTTL)
	ctx := context.Background()

	cache.Get(ctx, "acme", faqs)
	cache.Get(ctx, "globex", faqs)
	callsAfterWarm := p.embedCalls

	cache.Clear(ctx, "acme")
	cache.Get(ctx, "globex", faqs)
	if p.embedCalls != callsAfterWarm {
		t.Errorf("clearing one key must not evict another: %d calls (warm: %d)", p.embedCalls, callsAfterWarm)
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey(""); got != "default" {
		t.Errorf("expected 'default' for empty tenant, got %q", got)
	}
	if got := CacheKey("acme"); got != "acme" {
		t.Errorf("expected 'acme', got %q", got)
	}
}

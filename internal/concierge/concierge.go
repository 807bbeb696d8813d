// Package concierge assembles retrieved FAQ context into an LLM prompt and
// produces the final answer, with deterministic fallbacks so a caller always
// gets a usable reply.
package concierge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/rag"
	"github.com/scriptishrx/concierge/internal/tenant"
)

const (
	completionTemperature = 0.7
	completionMaxTokens   = 500

	automatedReplySuffix = " (Automated Reply)"

	// FallbackAnswer is the last rung of the fallback chain.
	FallbackAnswer = "I'm sorry, I don't have the answer to that right now. Please reach us at info@scriptishrx.com or call (312) 555-0147 and our team will help you directly."

	// VoiceNoInfoAnswer is returned on the voice path when semantic search
	// finds nothing.
	VoiceNoInfoAnswer = "I don't have information about that."
)

// VoiceContext is the structured retrieval result consumed by the voice
// agent.
type VoiceContext struct {
	Found      bool    `json:"found"`
	Answer     string  `json:"answer,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Source     string  `json:"source"`
}

// Service is the answer synthesizer.
type Service struct {
	provider llm.Provider
	engine   *rag.Engine
	tenants  *tenant.Accessor
	tracer   trace.Tracer
}

// New creates a Service.
func New(provider llm.Provider, engine *rag.Engine, tenants *tenant.Accessor) *Service {
	return &Service{
		provider: provider,
		engine:   engine,
		tenants:  tenants,
		tracer:   otel.Tracer("github.com/scriptishrx/concierge/internal/concierge"),
	}
}

// Query answers a user message for a tenant. The empty string is the "no
// answer" sentinel, returned only for an empty/whitespace message; every
// other path, including provider and store failures, lands on one of the
// fallback rungs. This method never returns an error.
func (s *Service) Query(ctx context.Context, userMessage, tenantID string) string {
	if strings.TrimSpace(userMessage) == "" {
		return ""
	}

	ctx, span := s.tracer.Start(ctx, "concierge.Query",
		trace.WithAttributes(attribute.String("tenant", rag.CacheKey(tenantID))))
	defer span.End()

	results, businessName, source := s.engine.Retrieve(ctx, userMessage, tenantID)
	span.SetAttributes(attribute.String("retrieval.source", source), attribute.Int("retrieval.results", len(results)))

	systemPrompt := s.buildSystemPrompt(ctx, businessName, tenantID, results)

	if s.provider != nil && s.provider.Available() {
		temp := completionTemperature
		maxTokens := completionMaxTokens
		resp, err := s.provider.Complete(ctx, &llm.Prompt{
			SystemPrompt: systemPrompt,
			Messages:     []llm.Message{{Role: llm.RoleUser, Content: userMessage}},
		}, &llm.RequestOptions{Temperature: &temp, MaxTokens: &maxTokens})
		if err != nil {
			slog.Warn("completion call failed", "component", "concierge", "provider", s.provider.Name(), "error", err)
		} else if resp != nil && strings.TrimSpace(resp.Content) != "" {
			return resp.Content
		}
	}

	if len(results) > 0 {
		return results[0].FAQ.Answer + automatedReplySuffix
	}
	return FallbackAnswer
}

// buildSystemPrompt names the resolved business, sets the behavioral
// constraints, and appends grounding context: matched FAQs when retrieval
// found any, the full FAQ list otherwise so the model always has something
// to answer from.
func (s *Service) buildSystemPrompt(ctx context.Context, businessName, tenantID string, results []rag.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the virtual concierge for %s.\n", businessName)
	b.WriteString("Answer from the knowledge base below whenever possible.\n")
	b.WriteString("Never invent services, prices, or availability that are not listed.\n")
	b.WriteString("If a question is outside the knowledge base, offer to connect the customer with a member of staff.\n")
	b.WriteString("Keep a professional, friendly tone.\n")

	if len(results) > 0 {
		b.WriteString("\nRelevant Knowledge:\n")
		for _, r := range results {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", r.FAQ.Question, r.FAQ.Answer)
		}
		return b.String()
	}

	faqs, _ := s.tenants.TenantFAQs(ctx, tenantID)
	b.WriteString("\nKnowledge Base:\n")
	for _, f := range faqs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", f.Question, f.Answer)
	}
	return b.String()
}

// VoiceContextFor returns the top-2 semantic matches in a structured form for
// the voice agent. Unlike Query it deliberately skips the keyword fallback:
// voice calls are latency-sensitive and a weak keyword match read aloud is
// worse than a clean handoff.
func (s *Service) VoiceContextFor(ctx context.Context, query, tenantID string) VoiceContext {
	ctx, span := s.tracer.Start(ctx, "concierge.VoiceContext",
		trace.WithAttributes(attribute.String("tenant", rag.CacheKey(tenantID))))
	defer span.End()

	results, _ := s.engine.SemanticSearch(ctx, query, tenantID, 2)
	if len(results) == 0 {
		return VoiceContext{Found: false, Answer: VoiceNoInfoAnswer, Source: "none"}
	}
	return VoiceContext{
		Found:      true,
		Answer:     results[0].FAQ.Answer,
		Confidence: results[0].Score,
		Source:     "semantic",
	}
}

// ClearCache drops cached embeddings for one tenant, or for all tenants when
// tenantID is empty.
func (s *Service) ClearCache(ctx context.Context, tenantID string) {
	s.engine.ClearCache(ctx, tenantID)
}

package rag

import "context"

// Strategy is one retrieval method in the fallback chain.
type Strategy struct {
	Name   string
	Search func(ctx context.Context, query, tenantID string) ([]Result, string)
}

// Strategies returns the ordered retrieval chain: semantic first, keyword
// second. The order is the precedence contract — result sets are never
// merged across strategies.
func (e *Engine) Strategies() []Strategy {
	return []Strategy{
		{
			Name: "semantic",
			Search: func(ctx context.Context, query, tenantID string) ([]Result, string) {
				return e.SemanticSearch(ctx, query, tenantID, DefaultTopK)
			},
		},
		{
			Name:   "keyword",
			Search: e.KeywordSearch,
		},
	}
}

// Retrieve runs the strategy chain until one yields a non-empty result set.
// It returns the results, the resolved business name, and the name of the
// strategy that produced them ("" when nothing matched).
func (e *Engine) Retrieve(ctx context.Context, query, tenantID string) ([]Result, string, string) {
	name := ""
	for _, s := range e.Strategies() {
		results, businessName := s.Search(ctx, query, tenantID)
		name = businessName
		if len(results) > 0 {
			return results, name, s.Name
		}
	}
	return nil, name, ""
}

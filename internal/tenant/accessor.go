package tenant

import (
	"context"
	"log/slog"
)

// Accessor resolves tenant FAQ sets with failure containment: lookups never
// raise, and every failure path lands on the default FAQ set.
type Accessor struct {
	store Store
}

// NewAccessor creates an Accessor over the given store. A nil store is
// treated as a store with no tenants.
func NewAccessor(store Store) *Accessor {
	return &Accessor{store: store}
}

// TenantFAQs returns the FAQ set and display name for a tenant. An empty
// tenantID, an unknown tenant, a tenant with no custom FAQs, or a store
// failure all yield the default set; the tenant's name is kept when known.
func (a *Accessor) TenantFAQs(ctx context.Context, tenantID string) ([]FAQ, string) {
	if tenantID == "" || a.store == nil {
		return DefaultFAQs(), DefaultBusinessName
	}

	t, err := a.store.FindTenant(ctx, tenantID)
	if err != nil {
		slog.Warn("tenant lookup failed", "component", "tenant", "tenant", tenantID, "error", err)
		return DefaultFAQs(), DefaultBusinessName
	}
	if t == nil {
		return DefaultFAQs(), DefaultBusinessName
	}

	name := t.Name
	if name == "" {
		name = DefaultBusinessName
	}
	if len(t.FAQs) == 0 {
		return DefaultFAQs(), name
	}
	return t.FAQs, name
}

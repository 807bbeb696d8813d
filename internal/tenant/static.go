package tenant

import "context"

// StaticStore is an in-memory Store keyed by tenant ID. Used by tests and as
// the default when no tenants file is configured.
type StaticStore struct {
	tenants map[string]*Tenant
}

// NewStaticStore builds a StaticStore from a list of tenants.
func NewStaticStore(tenants ...*Tenant) *StaticStore {
	m := make(map[string]*Tenant, len(tenants))
	for _, t := range tenants {
		m[t.ID] = t
	}
	return &StaticStore{tenants: m}
}

// FindTenant returns the tenant, or nil when unknown.
func (s *StaticStore) FindTenant(_ context.Context, id string) (*Tenant, error) {
	return s.tenants[id], nil
}

var _ Store = (*StaticStore)(nil)

package tenant

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
)

// FileStore loads tenant configuration from a YAML file of the form:
//
//	tenants:
//	  - id: acme
//	    name: Acme Wellness
//	    faqs:
//	      - question: ...
//	        answer: ...
//	        keywords: [a, b]
//
// The whole file is read once at construction; FAQ edits require a reload
// (and a cache clear, see rag.EmbeddingCache).
type FileStore struct {
	tenants map[string]*Tenant
}

// LoadFileStore reads a tenants file.
func LoadFileStore(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading tenants file: %w", err)
	}

	var raw struct {
		Tenants []*Tenant `mapstructure:"tenants"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unmarshalling tenants file: %w", err)
	}

	m := make(map[string]*Tenant, len(raw.Tenants))
	for _, t := range raw.Tenants {
		m[t.ID] = t
	}
	return &FileStore{tenants: m}, nil
}

// FindTenant returns the tenant, or nil when unknown.
func (s *FileStore) FindTenant(_ context.Context, id string) (*Tenant, error) {
	return s.tenants[id], nil
}

var _ Store = (*FileStore)(nil)

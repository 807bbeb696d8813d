// Package tenant resolves a tenant identifier to its configured FAQ set and
// display name, falling back to a built-in default set when the tenant is
// unknown, has no FAQs, or the backing store is unreachable.
package tenant

import "context"

// FAQ is a single knowledge-base entry. Immutable once loaded for a given
// retrieval call.
type FAQ struct {
	Question string   `json:"question" mapstructure:"question"`
	Answer   string   `json:"answer" mapstructure:"answer"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
}

// Tenant is an isolated customer whose FAQs and branding are kept separate
// from other tenants.
type Tenant struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	FAQs []FAQ  `json:"faqs" mapstructure:"faqs"`
}

// Store looks up tenant configuration. Implementations may be backed by a
// config file, a database, or a remote service.
type Store interface {
	FindTenant(ctx context.Context, id string) (*Tenant, error)
}

// DefaultBusinessName is used when no tenant name can be resolved.
const DefaultBusinessName = "the business"

// DefaultFAQs returns the system-wide fallback FAQ set used when a tenant has
// no custom entries. Returned fresh on each call so callers can't mutate the
// shared copy.
func DefaultFAQs() []FAQ {
	return []FAQ{
		{
			Question: "What services do you offer and what do they cost?",
			Answer:   "We offer a range of professional services with transparent pricing. Contact us for a detailed quote tailored to your needs.",
			Keywords: []string{"services", "pricing", "cost", "price", "offer"},
		},
		{
			Question: "How do I book an appointment or get in touch?",
			Answer:   "You can book an appointment through our online booking page, or reach us at info@scriptishrx.com and we'll get back to you within one business day.",
			Keywords: []string{"book", "booking", "appointment", "contact", "schedule"},
		},
		{
			Question: "Where are you located?",
			Answer:   "Our office details and directions are listed on our website. We also offer remote consultations for clients who can't visit in person.",
			Keywords: []string{"location", "address", "where", "directions"},
		},
	}
}

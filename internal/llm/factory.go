package llm

import "fmt"

// ProviderConfig holds all configuration needed to create any LLM provider.
type ProviderConfig struct {
	Provider   string // "openai", "gemini", "none"
	APIKey     string
	Model      string
	BaseURL    string // Override for self-hosted / proxy endpoints
	EmbedModel string // Embedding model identifier
}

// ProviderConstructor builds a Provider from config.
type ProviderConstructor func(cfg ProviderConfig) (Provider, error)

// ProviderFactory creates Provider instances from config.
type ProviderFactory struct {
	constructors map[string]ProviderConstructor
}

// NewFactory creates an empty factory; backends register themselves via
// Register (see cmd wiring).
func NewFactory() *ProviderFactory {
	return &ProviderFactory{
		constructors: make(map[string]ProviderConstructor),
	}
}

// Register adds a provider constructor under the given name.
func (f *ProviderFactory) Register(name string, ctor ProviderConstructor) {
	f.constructors[name] = ctor
}

// Create builds a Provider from config. When the provider is empty, "none",
// or has no API key, the Degraded provider is returned so callers get a
// non-nil Provider whose Available() is false and the service runs in
// keyword-search-and-canned-answer mode.
func (f *ProviderFactory) Create(cfg ProviderConfig) (Provider, error) {
	if cfg.Provider == "" || cfg.Provider == "none" || cfg.APIKey == "" {
		return Degraded{}, nil
	}

	ctor, ok := f.constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (registered: %v)", cfg.Provider, f.names())
	}
	return ctor(cfg)
}

func (f *ProviderFactory) names() []string {
	var out []string
	for k := range f.constructors {
		out = append(out, k)
	}
	return out
}

// KnownProviders documents the built-in provider presets. For
// OpenAI-compatible APIs (vLLM, Ollama, Together, etc.) use "openai" with a
// custom base_url.
var KnownProviders = map[string]string{
	"openai": "https://api.openai.com/v1",
	"gemini": "(Google genai SDK)",
}

package llm

import (
	"context"
	"errors"
	"testing"
)

type mockTestProvider struct {
	name  string
	calls int
}

func (m *mockTestProvider) Complete(_ context.Context, _ *Prompt, _ *RequestOptions) (*Response, error) {
	m.calls++
	return &Response{Content: "ok"}, nil
}

func (m *mockTestProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (m *mockTestProvider) Name() string    { return m.name }
func (m *mockTestProvider) Available() bool { return true }

func TestFactory_EmptyProviderReturnsDegraded(t *testing.T) {
	f := NewFactory()

	for _, cfg := range []ProviderConfig{
		{},
		{Provider: "none", APIKey: "key"},
		{Provider: "openai"}, // no API key
	} {
		p, err := f.Create(cfg)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", cfg, err)
		}
		if p == nil {
			t.Fatalf("expected non-nil provider for %+v", cfg)
		}
		if p.Available() {
			t.Errorf("expected unavailable provider for %+v", cfg)
		}
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory()
	_, err := f.Create(ProviderConfig{Provider: "mystery", APIKey: "key"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactory_RegisteredProvider(t *testing.T) {
	f := NewFactory()
	f.Register("mock", func(cfg ProviderConfig) (Provider, error) {
		return &mockTestProvider{name: "mock"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "mock", APIKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("expected name 'mock', got %q", p.Name())
	}
	if !p.Available() {
		t.Error("expected available provider")
	}
}

func TestDegraded_FailsFast(t *testing.T) {
	var p Provider = Degraded{}

	if p.Available() {
		t.Error("degraded provider must report unavailable")
	}
	if _, err := p.Complete(context.Background(), &Prompt{}, nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := p.Embed(context.Background(), []string{"x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

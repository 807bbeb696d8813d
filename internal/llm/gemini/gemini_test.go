package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/scriptishrx/concierge/internal/llm"
)

func TestAvailable_NilClient(t *testing.T) {
	c := NewFromClient(nil, "gemini-2.0-flash", "")
	if c.Available() {
		t.Error("expected client without SDK handle to be unavailable")
	}
	if _, err := c.Complete(context.Background(), &llm.Prompt{}, nil); !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from Complete, got %v", err)
	}
	if _, err := c.Embed(context.Background(), []string{"x"}); !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from Embed, got %v", err)
	}
}

func TestRequestConfig_TranslatesOptions(t *testing.T) {
	temp := 0.7
	topP := 0.9
	maxTokens := 500

	cfg := requestConfig("You are a concierge", &llm.RequestOptions{
		Temperature: &temp,
		TopP:        &topP,
		MaxTokens:   &maxTokens,
		StopSeqs:    []string{"END"},
	})

	if cfg.SystemInstruction == nil {
		t.Fatal("expected system instruction to be set")
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.7) {
		t.Errorf("expected temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.TopP == nil || *cfg.TopP != float32(0.9) {
		t.Errorf("expected topP 0.9, got %v", cfg.TopP)
	}
	if cfg.MaxOutputTokens != 500 {
		t.Errorf("expected max output tokens 500, got %d", cfg.MaxOutputTokens)
	}
	if len(cfg.StopSequences) != 1 || cfg.StopSequences[0] != "END" {
		t.Errorf("unexpected stop sequences %v", cfg.StopSequences)
	}
}

func TestRequestConfig_NilOptions(t *testing.T) {
	cfg := requestConfig("", nil)
	if cfg.SystemInstruction != nil {
		t.Error("expected no system instruction for empty prompt")
	}
	if cfg.Temperature != nil || cfg.TopP != nil {
		t.Error("expected provider defaults when no options are given")
	}
	if cfg.MaxOutputTokens != 0 {
		t.Errorf("expected unset max output tokens, got %d", cfg.MaxOutputTokens)
	}
}

func TestToContents_RoleMapping(t *testing.T) {
	contents := toContents([]llm.Message{
		{Role: llm.RoleUser, Content: "where are you located?"},
		{Role: llm.RoleAssistant, Content: "We are in Chicago."},
		{Role: llm.RoleUser, Content: "what are your hours?"},
	})

	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, c := range contents {
		if genai.Role(c.Role) != wantRoles[i] {
			t.Errorf("content %d: expected role %q, got %q", i, wantRoles[i], c.Role)
		}
	}
	if len(contents[1].Parts) != 1 || contents[1].Parts[0].Text != "We are in Chicago." {
		t.Errorf("content text lost in translation: %+v", contents[1].Parts)
	}
}

func TestNew_DefaultEmbedModel(t *testing.T) {
	c, err := New(context.Background(), "test-key", "gemini-2.0-flash", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.embedModel != "text-embedding-004" {
		t.Errorf("expected default embed model, got %q", c.embedModel)
	}
	if !c.Available() {
		t.Error("expected constructed client to be available")
	}
}

package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/scriptishrx/concierge/internal/llm"
)

// Client implements llm.Provider on the Google genai SDK.
type Client struct {
	client     *genai.Client
	model      string
	embedModel string
}

// New creates a Gemini provider using an API key.
func New(ctx context.Context, apiKey, model, embedModel string) (*Client, error) {
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: model, embedModel: embedModel}, nil
}

// NewFromClient wraps an existing genai client (used in tests and shared-client setups).
func NewFromClient(c *genai.Client, model, embedModel string) *Client {
	return &Client{client: c, model: model, embedModel: embedModel}
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Available() bool { return c.client != nil }

func (c *Client) Complete(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions) (*llm.Response, error) {
	if c.client == nil {
		return nil, llm.ErrUnavailable
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, toContents(prompt.Messages), requestConfig(prompt.SystemPrompt, opts))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	resp := &llm.Response{
		Content: result.Text(),
		Model:   c.model,
	}
	if result.UsageMetadata != nil {
		resp.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	if len(result.Candidates) > 0 {
		resp.StopReason = string(result.Candidates[0].FinishReason)
	}
	return resp, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.client == nil {
		return nil, llm.ErrUnavailable
	}

	var contents []*genai.Content
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	res, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// requestConfig translates provider-neutral request options into the genai
// generation config.
func requestConfig(systemPrompt string, opts *llm.RequestOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if opts != nil {
		if opts.Temperature != nil {
			cfg.Temperature = genai.Ptr(float32(*opts.Temperature))
		}
		if opts.TopP != nil {
			cfg.TopP = genai.Ptr(float32(*opts.TopP))
		}
		if opts.MaxTokens != nil {
			cfg.MaxOutputTokens = int32(*opts.MaxTokens)
		}
		if len(opts.StopSeqs) > 0 {
			cfg.StopSequences = opts.StopSeqs
		}
	}
	return cfg
}

// toContents maps conversation messages onto genai contents; Gemini has no
// assistant role, so assistant turns become model turns.
func toContents(msgs []llm.Message) []*genai.Content {
	var contents []*genai.Content
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

var _ llm.Provider = (*Client)(nil)

package llm

import "context"

// Degraded is the provider substituted when no credential is configured.
// Every operation fails fast with ErrUnavailable; no network call is ever
// attempted. Configuration absence is an expected operating mode, so callers
// check Available() rather than logging these errors.
type Degraded struct{}

func (Degraded) Complete(context.Context, *Prompt, *RequestOptions) (*Response, error) {
	return nil, ErrUnavailable
}

func (Degraded) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

func (Degraded) Name() string { return "none" }

func (Degraded) Available() bool { return false }

var _ Provider = Degraded{}

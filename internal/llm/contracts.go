package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned by providers when the model produced no text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrProviderDisabled is returned by the "none" provider.
	ErrProviderDisabled = errors.New("summary provider disabled")
)

// Summarizer turns a prompt into model text. It is the only capability the
// pipeline needs from a generative-text service.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, prompt string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Disabled never produces a summary.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", ErrProviderDisabled
}

// Summary is the outcome of a summary request. Available is false when Text is a
// fallback message.
type Summary struct {
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

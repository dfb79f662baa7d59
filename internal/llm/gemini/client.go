// Package gemini implements llm.Summarizer on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingKey = errors.New("gemini api key not configured")

// Config for the Gemini client.
type Config struct {
	APIKey      string // if empty, falls back to GOOGLE_API_KEY then GEMINI_API_KEY
	Model       string
	Temperature float32
}

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	models generator
	logger *slog.Logger
}

// NewClient configures a Gemini API backend client.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return newWithGenerator(cfg, cli.Models, logger), nil
}

func newWithGenerator(cfg Config, g generator, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, models: g, logger: logger}
}

func (c *Client) Model() string { return c.cfg.Model }

// Summarize sends the prompt as a single user turn and joins the text parts of
// the first candidate.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	temp := c.cfg.Temperature
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		c.logger.Error("llm.gemini.error",
			"req_id", rid, "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}

	c.logger.Info("llm.gemini.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"summary_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

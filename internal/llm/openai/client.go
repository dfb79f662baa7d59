package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
)

var errMissingKey = errors.New("openai api key not configured")

const systemPrompt = "You are a road safety engineer. Explain the reported issue in plain language " +
	"and recommend the listed interventions, most urgent first. Do not invent interventions " +
	"that are not listed."

// Summarize implements llm.Summarizer over chat/completions.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return "", errMissingKey
	}

	c.logger.Info("llm.openai.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.openai.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	if !gjson.ValidBytes(raw) {
		c.logger.Error("llm.openai.decode_error",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode openai response: invalid json")
	}
	choice := gjson.GetBytes(raw, "choices.0.message.content")
	if !choice.Exists() {
		c.logger.Error("llm.openai.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(choice.String())
	if content == "" {
		return "", llm.ErrEmptyResponse
	}

	c.logger.Info("llm.openai.ok",
		"req_id", rid,
		"summary_len", len(content),
		"finish_reason", gjson.GetBytes(raw, "choices.0.finish_reason").String(),
		"total_tokens", gjson.GetBytes(raw, "usage.total_tokens").Int(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("llm.openai.body_close_error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(buf.Bytes(), "error.message").String()
		if msg == "" {
			msg = buf.String()
		}
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, msg)
	}
	return buf.Bytes(), nil
}

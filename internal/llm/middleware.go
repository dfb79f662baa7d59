package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimited bounds the request rate to the wrapped summarizer. Callers wait for
// a token or give up when their context ends.
type RateLimited struct {
	next    Summarizer
	limiter *rate.Limiter
}

// NewRateLimited allows rps requests per second with a burst of one. A
// non-positive rps disables limiting.
func NewRateLimited(next Summarizer, rps float64) Summarizer {
	if rps <= 0 {
		return next
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (r *RateLimited) Summarize(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Summarize(ctx, prompt)
}

// Cached memoizes successful summaries by prompt hash. Failures are never cached.
type Cached struct {
	next   Summarizer
	cache  *lru.Cache[string, string]
	logger *slog.Logger
}

// NewCached keeps up to size summaries. A non-positive size disables caching.
func NewCached(next Summarizer, size int, logger *slog.Logger) (Summarizer, error) {
	if size <= 0 {
		return next, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("summary cache: %w", err)
	}
	return &Cached{next: next, cache: c, logger: logger}, nil
}

func (c *Cached) Summarize(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)
	if text, ok := c.cache.Get(key); ok {
		c.logger.Debug("llm.cache.hit", "key", key[:12])
		return text, nil
	}
	text, err := c.next.Summarize(ctx, prompt)
	if err != nil || text == "" {
		return text, err
	}
	c.cache.Add(key, text)
	return text, nil
}

func (c *Cached) Len() int { return c.cache.Len() }

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

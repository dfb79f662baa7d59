package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

const DefaultTimeout = 20 * time.Second

// Requester builds prompts and calls a Summarizer with a deadline. It always
// returns a usable string.
type Requester struct {
	summarizer Summarizer
	timeout    time.Duration
	inputCap   int
	topN       int
	logger     *slog.Logger
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

func WithTimeout(d time.Duration) RequesterOption {
	return func(r *Requester) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithInputCap(n int) RequesterOption {
	return func(r *Requester) {
		if n > 0 {
			r.inputCap = n
		}
	}
}

func WithTopN(n int) RequesterOption {
	return func(r *Requester) {
		if n > 0 {
			r.topN = n
		}
	}
}

// NewRequester wraps s. A nil summarizer behaves like Disabled.
func NewRequester(s Summarizer, logger *slog.Logger, opts ...RequesterOption) *Requester {
	if s == nil {
		s = Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Requester{
		summarizer: s,
		timeout:    DefaultTimeout,
		inputCap:   DefaultInputCap,
		topN:       DefaultTopN,
		logger:     logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Summarize returns model text or a fallback beginning with "AI summary unavailable".
func (r *Requester) Summarize(ctx context.Context, issueText string, matches []catalog.Record) string {
	return r.Request(ctx, issueText, matches).Text
}

// Request is Summarize with an availability flag. Provider errors, timeouts and
// panics are converted into fallback text. The timeout holds even when the
// provider ignores ctx; a late answer is discarded.
func (r *Requester) Request(ctx context.Context, issueText string, matches []catalog.Record) Summary {
	start := time.Now()
	prompt := BuildPrompt(issueText, matches, r.inputCap, r.topN)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		text string
		err  error
	)
	select {
	case res := <-r.call(ctx, prompt):
		if res.panic != nil {
			r.logger.Error("llm.summary.panic", "panic", res.panic, "elapsed_ms", time.Since(start).Milliseconds())
			return Summary{Text: unavailable(fmt.Errorf("panic: %v", res.panic))}
		}
		text, err = strings.TrimSpace(res.text), res.err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		if errors.Is(err, ErrProviderDisabled) {
			r.logger.Debug("llm.summary.disabled")
		} else {
			r.logger.Warn("llm.summary.failed",
				"error", err,
				"prompt_len", len(prompt),
				"matches", len(matches),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		return Summary{Text: unavailable(err)}
	}

	r.logger.Info("llm.summary.ok",
		"prompt_len", len(prompt),
		"summary_len", len(text),
		"matches", len(matches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Summary{Text: text, Available: true}
}

type callResult struct {
	text  string
	err   error
	panic any
}

// call runs the provider on its own goroutine. The channel is buffered so an
// abandoned call can still finish and exit.
func (r *Requester) call(ctx context.Context, prompt string) <-chan callResult {
	out := make(chan callResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				out <- callResult{panic: rec}
			}
		}()
		text, err := r.summarizer.Summarize(ctx, prompt)
		out <- callResult{text: text, err: err}
	}()
	return out
}

func unavailable(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return constants.SummaryUnavailableEmpty
	case errors.Is(err, ErrProviderDisabled):
		return constants.SummaryUnavailable + " (provider disabled)"
	case errors.Is(err, context.DeadlineExceeded):
		return constants.SummaryUnavailable + " (timed out)"
	}
	return fmt.Sprintf("%s (%v)", constants.SummaryUnavailable, err)
}

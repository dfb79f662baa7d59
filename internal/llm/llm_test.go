package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func records(n int) []catalog.Record {
	out := make([]catalog.Record, n)
	for i := range out {
		out[i] = catalog.Record{Title: "Intervention " + string(rune('A'+i)), Description: "desc"}
	}
	return out
}

func TestBuildPromptCaps(t *testing.T) {
	long := strings.Repeat("x", 900)
	p := BuildPrompt(long, records(7), 0, 0)

	assert.Contains(t, p, strings.Repeat("x", 600))
	assert.NotContains(t, p, strings.Repeat("x", 601))
	assert.Contains(t, p, "Intervention E")
	assert.NotContains(t, p, "Intervention F")
	assert.True(t, strings.HasPrefix(p, "Summarize the road safety issue"))
}

func TestBuildPromptReferences(t *testing.T) {
	p := BuildPrompt("curve", []catalog.Record{
		{Title: "Chevrons", IRCCode: "IRC:67", Clause: "14.4", CostTier: "Low", Description: strings.Repeat("d", 500)},
		{Title: "Delineators", IRCCode: "IRC:79"},
	}, 600, 5)

	assert.Contains(t, p, "- Chevrons [IRC:67 cl. 14.4] cost: Low: ")
	assert.Contains(t, p, "- Delineators [IRC:79]\n")
	assert.NotContains(t, p, strings.Repeat("d", descriptionCap+1))
}

func TestBuildPromptNoMatches(t *testing.T) {
	assert.Contains(t, BuildPrompt("", nil, 600, 5), "no matching interventions")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "", truncateRunes("abc", 0))
}

func TestRequesterSuccess(t *testing.T) {
	var prompt string
	s := SummarizerFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  Fix the curve.\n", nil
	})
	r := NewRequester(s, quiet())

	got := r.Request(context.Background(), "Sharp curve", records(1))
	assert.Equal(t, Summary{Text: "Fix the curve.", Available: true}, got)
	assert.Contains(t, prompt, "Sharp curve")
	assert.Equal(t, "Fix the curve.", r.Summarize(context.Background(), "Sharp curve", nil))
}

func TestRequesterFallbacks(t *testing.T) {
	tests := []struct {
		name string
		s    Summarizer
		want string
	}{
		{"error", SummarizerFunc(func(context.Context, string) (string, error) { return "", errors.New("network down") }),
			"AI summary unavailable (network down)"},
		{"empty", SummarizerFunc(func(context.Context, string) (string, error) { return " \n", nil }),
			constants.SummaryUnavailableEmpty},
		{"disabled", Disabled{}, "AI summary unavailable (provider disabled)"},
		{"nil summarizer", nil, "AI summary unavailable (provider disabled)"},
		{"panic", SummarizerFunc(func(context.Context, string) (string, error) { panic("kaboom") }),
			"AI summary unavailable (panic: kaboom)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRequester(tt.s, quiet()).Request(context.Background(), "pothole", records(2))
			assert.False(t, got.Available)
			assert.Equal(t, tt.want, got.Text)
			assert.True(t, strings.HasPrefix(got.Text, constants.SummaryUnavailable))
		})
	}
}

func TestRequesterTimeout(t *testing.T) {
	slow := SummarizerFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r := NewRequester(slow, quiet(), WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := r.Request(context.Background(), "curve", nil)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "AI summary unavailable (timed out)", got.Text)
}

func TestRequesterTimeoutIgnoredContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := SummarizerFunc(func(context.Context, string) (string, error) {
		<-release
		return "late answer", nil
	})
	r := NewRequester(stuck, quiet(), WithTimeout(50*time.Millisecond))

	start := time.Now()
	got := r.Request(context.Background(), "curve", nil)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, got.Available)
	assert.Equal(t, "AI summary unavailable (timed out)", got.Text)
}

func TestRequesterParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stuck := SummarizerFunc(func(context.Context, string) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "late answer", nil
	})

	got := NewRequester(stuck, quiet()).Request(ctx, "curve", nil)
	assert.False(t, got.Available)
	assert.Equal(t, "AI summary unavailable (context canceled)", got.Text)
}

func TestRequesterOptions(t *testing.T) {
	var prompt string
	s := SummarizerFunc(func(_ context.Context, p string) (string, error) { prompt = p; return "ok", nil })
	r := NewRequester(s, quiet(), WithInputCap(5), WithTopN(1), WithTimeout(0))

	r.Summarize(context.Background(), "abcdefghij", records(3))
	assert.Contains(t, prompt, "Issue:\nabcde\n")
	assert.NotContains(t, prompt, "abcdef")
	assert.NotContains(t, prompt, "Intervention B")
	assert.Equal(t, DefaultTimeout, r.timeout)
}

func TestCached(t *testing.T) {
	var calls int32
	s := SummarizerFunc(func(_ context.Context, p string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if p == "fail" {
			return "", errors.New("nope")
		}
		return "summary of " + p, nil
	})
	cs, err := NewCached(s, 2, quiet())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := cs.Summarize(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "summary of a", got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = cs.Summarize(context.Background(), "fail")
	assert.Error(t, err)
	_, err = cs.Summarize(context.Background(), "fail")
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cs.(*Cached).Len())

	passthrough, err := NewCached(s, 0, nil)
	require.NoError(t, err)
	_, isCached := passthrough.(*Cached)
	assert.False(t, isCached)
}

func TestRateLimited(t *testing.T) {
	s := SummarizerFunc(func(context.Context, string) (string, error) { return "ok", nil })

	assert.IsType(t, SummarizerFunc(nil), NewRateLimited(s, 0))

	rl := NewRateLimited(s, 0.001)
	_, err := rl.Summarize(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Summarize(ctx, "second")
	assert.Error(t, err)
}

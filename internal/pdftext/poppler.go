package pdftext

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes an external command. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// ToolError is a failed poppler invocation. Detail is the first stderr line.
type ToolError struct {
	Tool   string
	Detail string
	Err    error
}

func (e *ToolError) Error() string { return e.Tool + ": " + e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// poppler drives the pdftotext and pdfinfo binaries.
type poppler struct {
	runner    Runner
	pdftotext string
	pdfinfo   string
	logger    *slog.Logger
}

func (p poppler) run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	start := time.Now()
	out, errb, err := p.runner.Run(ctx, tool, args...)
	if err != nil {
		detail := firstLine(string(errb))
		p.logger.Warn("pdftext.exec.failed",
			"cmd", tool,
			"error", err,
			"stderr", detail,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &ToolError{Tool: tool, Detail: detail, Err: err}
	}
	p.logger.Debug("pdftext.exec.ok",
		"cmd", tool,
		"stdout_bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// text runs pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> - and returns
// raw output, form feeds included.
func (p poppler) text(ctx context.Context, path string, maxPages int) (string, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, "-")
	out, err := p.run(ctx, p.pdftotext, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// pageCount reads the "Pages:" line of pdfinfo.
func (p poppler) pageCount(ctx context.Context, path string) (int, error) {
	out, err := p.run(ctx, p.pdfinfo, path)
	if err != nil {
		return 0, err
	}
	return parsePages(out)
}

func parsePages(info []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(info))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("pdfinfo: bad page count %q", strings.TrimSpace(val))
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo: no page count")
}

// formFeedPages counts pages in pdftotext output, where \f ends each page.
func formFeedPages(raw string) int {
	raw = strings.TrimRight(raw, "\f\n")
	if raw == "" {
		return 0
	}
	return 1 + strings.Count(raw, "\f")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	const max = 512
	if len(s) > max {
		s = s[:max] + "...(truncated)"
	}
	return s
}

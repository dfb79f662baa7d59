package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm/openai"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

const testCSV = `intervention,description,keywords,irc_code,clause,cost
Pothole patching,Cold mix repair of potholes,pothole,IRC:82,4.2,Low
Chevron signs,Chevron boards on sharp curves,"curve,sign",IRC:67,14.4,Medium
Street lighting,Lighting for dark stretches,lighting,IRC:SP:73,9.1,High
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "catalog.csv", testCSV)

	out, err := run(t, "analyze", "--provider", "none", "--catalog", csv, "Deep potholes and a sharp curve")
	require.NoError(t, err)
	assert.Contains(t, out, "Detected issues: pothole, curve")
	assert.Contains(t, out, "Pothole patching (IRC:82, clause 4.2)")
	assert.Contains(t, out, "Chevron signs")
	assert.Contains(t, out, "AI summary unavailable (provider disabled)")

	out, err = run(t, "analyze", "--provider", "none", "--catalog", csv, "--json", "")
	require.NoError(t, err)
	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.True(t, r.NoMatches)
}

func TestAnalyzeCommandFallsBackToBuiltinCatalog(t *testing.T) {
	out, err := run(t, "analyze", "--provider", "none", "--catalog", filepath.Join(t.TempDir(), "missing.csv"), "pothole on the road")
	require.NoError(t, err)
	assert.Contains(t, out, "Detected issues: pothole")
	assert.NotContains(t, out, "No matching interventions found.")
}

func TestAnalyzeCommandRejectsBadInput(t *testing.T) {
	_, err := run(t, "analyze", "--provider", "none", "--pdf", filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)

	_, err = run(t, "analyze", "--provider", "bogus", "x")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "output"))
	csv := writeFile(t, dir, "catalog.csv", testCSV)
	doc := writeFile(t, dir, "audit.txt", "Pothole near km 4\n\nPage 2\nDark curve without lighting\n")

	out, err := run(t, "batch", "--provider", "none", "--catalog", csv, "--xlsx", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Grand total project estimate: INR 260,000")

	raw, err := os.ReadFile(filepath.Join(dir, "output", "intervention_report.json"))
	require.NoError(t, err)
	var br report.BatchReport
	require.NoError(t, json.Unmarshal(raw, &br))
	require.Len(t, br.Sections, 2)
	assert.Equal(t, int64(10000), br.Sections[0].TotalCost)
	assert.Equal(t, int64(250000), br.Sections[1].TotalCost)
	assert.FileExists(t, filepath.Join(dir, "output", "intervention_report.xlsx"))
}

func TestBatchCommandExportsUntitledCatalogRow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "output"))
	csv := writeFile(t, dir, "catalog.csv", "intervention,description,keywords,cost\n,Fill potholes quickly,pothole,Low\n")
	doc := writeFile(t, dir, "audit.txt", "Pothole near km 12\n")

	out, err := run(t, "batch", "--provider", "none", "--catalog", csv, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Fill potholes quickly")

	raw, err := os.ReadFile(filepath.Join(dir, "output", "intervention_report.json"))
	require.NoError(t, err)
	var br report.BatchReport
	require.NoError(t, json.Unmarshal(raw, &br))
	require.Len(t, br.Sections, 1)
	require.Len(t, br.Sections[0].Recommendations, 1)
	assert.Equal(t, "Fill potholes quickly", br.Sections[0].Recommendations[0].Intervention)
	assert.Equal(t, int64(10000), br.GrandTotal)
}

func TestBatchCommandIsStrictAboutCatalog(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "audit.txt", "pothole")
	_, err := run(t, "batch", "--provider", "none", "--catalog", filepath.Join(dir, "missing.csv"), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be loaded")
}

func TestNewSummarizer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	assert.IsType(t, llm.Disabled{}, newSummarizer(ctx, common.LLMConfig{Provider: "none"}, log))

	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	assert.IsType(t, llm.Disabled{}, newSummarizer(ctx, common.LLMConfig{Provider: "gemini"}, log))

	s := newSummarizer(ctx, common.LLMConfig{Provider: "openai", OpenAIKey: "k", CacheSize: 4, RPS: 1}, log)
	assert.IsType(t, &llm.Cached{}, s)

	bare := newSummarizer(ctx, common.LLMConfig{Provider: "openai", OpenAIKey: "k"}, log)
	assert.IsType(t, &openai.Client{}, bare)
}

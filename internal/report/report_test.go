package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
	"github.com/joseph-ayodele/saferoad-advisor/internal/cost"
	"github.com/joseph-ayodele/saferoad-advisor/internal/llm"
)

var (
	signs  = catalog.Record{Title: "Curve warning signs", IRCCode: "IRC:67", Clause: "14.4", CostTier: "Low", EstimatedCost: 10000}
	lights = catalog.Record{Title: "Street lighting", IRCCode: "IRC:SP:73", CostTier: "High", EstimatedCost: 200000}
)

func TestAssemble(t *testing.T) {
	br := cost.Estimate([]catalog.Record{signs})
	r := Assemble(Input{Text: "sharp curve"}, []string{"curve"}, []catalog.Record{signs}, nil, &br, llm.Summary{Text: "Add chevrons.", Available: true})

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, SourceManual, r.Source)
	assert.Equal(t, SourceManual, r.Input.Source)
	assert.False(t, r.NoMatches)
	assert.Equal(t, int64(10000), r.Costs.Total)
	assert.True(t, r.SummaryAvailable)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestAssembleEmpty(t *testing.T) {
	r := Assemble(Input{}, nil, nil, nil, nil, llm.Summary{Text: "AI summary unavailable (x)"})
	assert.True(t, r.NoMatches)
	assert.NotNil(t, r.Issues)
	assert.NotNil(t, r.Matches)
	assert.Nil(t, r.Costs)

	b, err := Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"issues": []`)
	assert.Contains(t, string(b), `"no_matches": true`)
}

func TestAssembleTruncatesInput(t *testing.T) {
	r := Assemble(Input{Source: "a.pdf", Text: strings.Repeat("é", maxInputChars+10)}, nil, nil, nil, nil, llm.Summary{})
	assert.True(t, r.Input.Truncated)
	assert.Len(t, []rune(r.Input.Text), maxInputChars)
	assert.Equal(t, "a.pdf", r.Source)
}

func sampleBatch() BatchReport {
	return AssembleBatch("audit.pdf", []SectionInput{
		{Text: "Sharp curve without signs", Issues: []string{"curve", "sign"}, Matches: []catalog.Record{signs}},
		{Text: "Page 2", Issues: nil, Matches: nil},
		{Text: "Dark curve", Issues: []string{"curve", "lighting"}, Matches: []catalog.Record{signs, lights}},
	}, "")
}

func TestAssembleBatch(t *testing.T) {
	b := sampleBatch()
	require.Len(t, b.Sections, 2)
	assert.Equal(t, "Sharp curve without signs", b.Sections[0].Issue)
	assert.Equal(t, int64(10000), b.Sections[0].TotalCost)
	assert.Equal(t, int64(210000), b.Sections[1].TotalCost)
	// signs counted in both sections
	assert.Equal(t, int64(220000), b.GrandTotal)
	assert.Equal(t, Recommendation{Intervention: "Street lighting", IRCCode: "IRC:SP:73", CostLevel: "High", EstimatedCost: 200000},
		b.Sections[1].Recommendations[1])

	var sum int64
	for _, s := range b.Sections {
		sum += s.TotalCost
	}
	assert.Equal(t, sum, b.GrandTotal)
}

func TestAssembleBatchNoMatches(t *testing.T) {
	b := AssembleBatch("empty.pdf", []SectionInput{{Text: "nothing here"}}, "")
	assert.Empty(t, b.Sections)
	assert.Zero(t, b.GrandTotal)
	_, err := Marshal(b)
	assert.NoError(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "intervention_report.json")
	require.NoError(t, WriteJSON(path, sampleBatch()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(220000), doc["grand_total"])
	secs := doc["sections"].([]any)
	first := secs[0].(map[string]any)
	assert.Equal(t, "Sharp curve without signs", first["issue"])
	rec := first["recommendations"].([]any)[0].(map[string]any)
	assert.Equal(t, "Low", rec["cost_level"])
	assert.Equal(t, "14.4", rec["clause"])
}

func TestMarshalRejectsInvalidBatch(t *testing.T) {
	b := sampleBatch()
	b.Sections[0].Recommendations = nil
	_, err := Marshal(&b)
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestMarshalOtherValues(t *testing.T) {
	b, err := Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))
}

func TestBatchXLSX(t *testing.T) {
	data, err := BatchXLSX(sampleBatch())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Interventions")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Intervention", rows[0][2])
	assert.Equal(t, "Curve warning signs", rows[1][2])
	assert.Equal(t, "curve, sign", rows[1][1])
	assert.Equal(t, "210000", rows[2][7])
	assert.Len(t, rows[3], 7) // no section total on the second row of a section
	assert.Equal(t, "Grand Total", rows[4][0])
	assert.Equal(t, "220000", rows[4][7])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	br := cost.Estimate([]catalog.Record{signs})
	r := Assemble(Input{Text: "curve"}, []string{"curve"}, []catalog.Record{signs}, nil, &br, llm.Summary{Text: "ok", Available: true})
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "Detected issues: curve")
	assert.Contains(t, out, "Curve warning signs (IRC:67, clause 14.4)")
	assert.Contains(t, out, "Estimated cost: INR 10,000")

	buf.Reset()
	require.NoError(t, WriteText(&buf, Assemble(Input{}, nil, nil, nil, nil, llm.Summary{Text: "n/a"})))
	assert.Contains(t, buf.String(), "No matching interventions found.")

	buf.Reset()
	require.NoError(t, WriteBatchText(&buf, sampleBatch()))
	assert.Contains(t, buf.String(), "Grand total project estimate: INR 220,000")
}

func TestMatchedByInOutput(t *testing.T) {
	r := Assemble(Input{Text: "dark curve"}, []string{"curve", "lighting"}, []catalog.Record{signs, lights},
		[][]string{{"curve"}, {"lighting"}}, nil, llm.Summary{Text: "ok", Available: true})
	_, err := Marshal(r)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "Matched on: curve\n")
	assert.Contains(t, buf.String(), "Matched on: lighting\n")

	b := AssembleBatch("audit.pdf", []SectionInput{{
		Text:      "Dark curve",
		Issues:    []string{"curve", "lighting"},
		Matches:   []catalog.Record{signs, lights},
		MatchedBy: [][]string{{"curve"}, {"lighting"}},
	}}, "")
	require.Len(t, b.Sections, 1)
	assert.Equal(t, []string{"lighting"}, b.Sections[0].Recommendations[1].MatchedBy)
	_, err = Marshal(b)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, WriteBatchText(&buf, b))
	assert.Contains(t, buf.String(), "| Matched on: curve\n")
}

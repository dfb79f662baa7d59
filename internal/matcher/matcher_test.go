package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New("test", []catalog.Record{
		{Title: "Pothole patching", Description: "Cold mix repair", Keywords: []string{"pothole"}},
		{Title: "Drain repair", Description: "Clear blocked side drains", Keywords: []string{"drain", "flood"}},
		{Title: "Curve warning signs", Description: "Chevron boards ahead of bends", Keywords: []string{"curve", "sign"}},
		{Title: "School zone markings", Description: "Speed limit and crossing for school areas"},
	})
}

func titles(rs []catalog.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return out
}

func TestKeywordMatch(t *testing.T) {
	m := New(nil)
	c := testCatalog()

	tests := []struct {
		name   string
		issues []string
		want   []string
	}{
		{"drain", []string{"drain"}, []string{"Drain repair"}},
		{"flood", []string{"flood"}, []string{"Drain repair"}},
		{"pothole only", []string{"pothole"}, []string{"Pothole patching"}},
		{"description substring", []string{"school"}, []string{"School zone markings"}},
		{"title substring", []string{"chevron"}, []string{"Curve warning signs"}},
		{"catalog order", []string{"school", "curve", "pothole"}, []string{"Pothole patching", "Curve warning signs", "School zone markings"}},
		{"case insensitive token", []string{" DRAIN "}, []string{"Drain repair"}},
		{"no hit", []string{"ramp"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(m.Match(tt.issues, c)))
		})
	}
}

func TestDrainFloodRowIgnoresPothole(t *testing.T) {
	m := New(KeywordStrategy{})
	r := testCatalog().Records()[1]

	assert.True(t, m.Strategy().Matches("drain", r))
	assert.True(t, m.Strategy().Matches("flood", r))
	assert.False(t, m.Strategy().Matches("pothole", r))
	assert.Equal(t, []string{"drain", "flood"}, m.MatchedBy([]string{"pothole", "drain", "flood"}, r))
}

func TestMatchEachRecordOnce(t *testing.T) {
	m := New(nil)
	got := m.Match([]string{"drain", "flood", "drain"}, testCatalog())
	assert.Len(t, got, 1)
}

func TestMatchEmptyInputs(t *testing.T) {
	m := New(nil)
	assert.Empty(t, m.Match(nil, testCatalog()))
	assert.Empty(t, m.Match([]string{"", "  "}, testCatalog()))
	assert.Empty(t, m.Match([]string{"pothole"}, catalog.Empty()))
	assert.Empty(t, m.Match([]string{"pothole"}, nil))
}

func TestMatchSatisfiesPredicate(t *testing.T) {
	m := New(nil)
	c := testCatalog()
	issues := []string{"pothole", "sign", "flood", "school"}
	for _, r := range m.Match(issues, c) {
		assert.NotEmpty(t, m.MatchedBy(issues, r), r.Title)
	}
}

func TestFuzzyStrategy(t *testing.T) {
	f := NewFuzzyStrategy(0.7)
	recs := testCatalog().Records()

	// one edit away from "pothole"
	assert.True(t, f.Matches("pothol", recs[0]))
	assert.True(t, f.Matches("drainn", recs[1]))
	assert.False(t, f.Matches("lighting", recs[0]))
	assert.InDelta(t, 1.0, f.Similarity("curve", "curve"), 1e-9)

	strict := NewFuzzyStrategy(0.99)
	assert.False(t, strict.Matches("pothol", catalog.Record{Title: "Patching", Keywords: []string{"pothole"}}))
}

func TestFuzzyThresholdDefault(t *testing.T) {
	assert.Equal(t, 0.7, NewFuzzyStrategy(0).Threshold)
	assert.Equal(t, 0.7, NewFuzzyStrategy(1.5).Threshold)
}

func TestFromConfig(t *testing.T) {
	m, err := FromConfig("", 0)
	require.NoError(t, err)
	assert.Equal(t, "keyword", m.Strategy().Name())

	m, err = FromConfig("Fuzzy", 0.8)
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", m.Strategy().Name())

	_, err = FromConfig("semantic", 0)
	assert.Error(t, err)
}

func TestTop(t *testing.T) {
	recs := testCatalog().Records()
	assert.Equal(t, recs[:2], Top(recs, 2))
	assert.Equal(t, recs, Top(recs, 10))
	assert.Nil(t, Top(recs, 0))
	assert.Nil(t, Top(nil, 5))
}

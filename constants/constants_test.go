package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierCost(t *testing.T) {
	assert.Equal(t, int64(10000), TierCost("low"))
	assert.Equal(t, int64(50000), TierCost(" Medium "))
	assert.Equal(t, int64(50000), TierCost("med"))
	assert.Equal(t, int64(200000), TierCost("HIGH"))
	assert.Equal(t, int64(0), TierCost("extreme"))
	assert.Equal(t, int64(0), TierCost(""))
}

func TestCanonicalIssue(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Pothole", "pothole", true},
		{"speed   breaker", "speed breaker", true},
		{"Street Light", "lighting", true},
		{"junction", "intersection", true},
		{"", "", false},
		{"tree", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalIssue(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSynonymsReturnsCopy(t *testing.T) {
	s := Synonyms()
	s["junction"] = "changed"
	got, ok := CanonicalIssue("junction")
	assert.True(t, ok)
	assert.Equal(t, "intersection", got)
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, TXT, MapExtToFormat("txt"))
	assert.Equal(t, CSV, MapExtToFormat(".csv"))
	assert.Equal(t, XLSX, MapExtToFormat("xlsx"))
	assert.Equal(t, "", MapExtToFormat(".docx"))
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
}

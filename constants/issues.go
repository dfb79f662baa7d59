package constants

import (
	"strings"
)

// Vocabulary is the controlled set of road-defect terms the issue extractor looks for.
var Vocabulary = []string{
	"pothole",
	"crack",
	"overspeeding",
	"school",
	"curve",
	"sign",
	"lighting",
	"slippery",
	"intersection",
	"visibility",
	"barrier",
	"guardrail",
	"crosswalk",
	"shoulder",
	"narrow",
	"accident",
	"speed breaker",
	"reflector",
	"ramp",
	"pedestrian",
	"drain",
	"flood",
}

// synonyms maps common alternative phrasings to a vocabulary term.
var synonyms = map[string]string{
	"street light":   "lighting",
	"streetlight":    "lighting",
	"guard rail":     "guardrail",
	"crash barrier":  "barrier",
	"speed bump":     "speed breaker",
	"speed hump":     "speed breaker",
	"zebra crossing": "crosswalk",
	"junction":       "intersection",
	"crossroad":      "intersection",
	"waterlogging":   "flood",
}

// Synonyms returns a copy of the synonym table.
func Synonyms() map[string]string {
	out := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		out[k] = v
	}
	return out
}

// IsIssueTerm reports whether s (any case) is part of the vocabulary.
func IsIssueTerm(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, term := range Vocabulary {
		if s == term {
			return true
		}
	}
	return false
}

// CanonicalIssue maps a vocabulary term or a known synonym to its vocabulary term.
func CanonicalIssue(input string) (string, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if normalized == "" {
		return "", false
	}
	if IsIssueTerm(normalized) {
		return normalized, true
	}
	if term, ok := synonyms[normalized]; ok {
		return term, true
	}
	return "", false
}

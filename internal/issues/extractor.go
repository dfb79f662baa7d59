// Package issues detects road-defect terms in free text.
package issues

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
)

// Mode is the term matching policy. An Extractor applies exactly one mode to
// every input it sees.
type Mode string

const (
	// ModeWordPrefix matches a term that starts at a word boundary and may run on
	// into a longer word: "potholes", "signage" and "flooding" match, "design" does not.
	ModeWordPrefix Mode = "prefix"
	// ModeWholeWord requires word boundaries on both sides.
	ModeWholeWord Mode = "word"
	// ModeSubstring is a plain case-insensitive substring match.
	ModeSubstring Mode = "substring"
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWordPrefix, ModeWholeWord, ModeSubstring:
		return m, nil
	case "":
		return ModeWordPrefix, nil
	}
	return "", fmt.Errorf("unknown issue match mode %q", s)
}

type pattern struct {
	term string // canonical vocabulary term
	re   *regexp.Regexp
}

// Extractor scans text for vocabulary terms. It is immutable and safe for
// concurrent use.
type Extractor struct {
	patterns []pattern
}

// NewExtractor compiles the vocabulary (and its synonyms) for the given mode.
func NewExtractor(mode Mode) *Extractor {
	if mode == "" {
		mode = ModeWordPrefix
	}
	phrases := make(map[string]string, len(constants.Vocabulary))
	for _, term := range constants.Vocabulary {
		phrases[term] = term
	}
	for alt, term := range constants.Synonyms() {
		phrases[alt] = term
	}

	// longer phrases first so "speed breaker" is tried before "speed"-like terms
	keys := make([]string, 0, len(phrases))
	for k := range phrases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	e := &Extractor{}
	for _, k := range keys {
		e.patterns = append(e.patterns, pattern{term: phrases[k], re: compile(k, mode)})
	}
	return e
}

func compile(phrase string, mode Mode) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	body := strings.Join(words, `\s+`)
	switch mode {
	case ModeWholeWord:
		return regexp.MustCompile(`(?i)\b` + body + `\b`)
	case ModeSubstring:
		return regexp.MustCompile(`(?i)` + body)
	default:
		return regexp.MustCompile(`(?i)\b` + body)
	}
}

// Extract returns the distinct vocabulary terms found in text, lowercased, in
// order of first appearance. Blank text yields an empty (nil) result.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	first := make(map[string]int)
	for _, p := range e.patterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if pos, seen := first[p.term]; !seen || loc[0] < pos {
			first[p.term] = loc[0]
		}
	}
	if len(first) == 0 {
		return nil
	}

	out := make([]string, 0, len(first))
	for term := range first {
		out = append(out, term)
	}
	sort.Slice(out, func(i, j int) bool {
		if first[out[i]] != first[out[j]] {
			return first[out[i]] < first[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

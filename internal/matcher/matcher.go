// Package matcher selects catalog interventions relevant to extracted issue tokens.
package matcher

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

// Strategy decides whether a record is relevant to a single issue token.
type Strategy interface {
	Name() string
	Matches(token string, r catalog.Record) bool
}

// Matcher runs a Strategy over a catalog. A record is returned at most once per
// run, in catalog order, however many tokens hit it.
type Matcher struct {
	strategy Strategy
}

func New(s Strategy) *Matcher {
	if s == nil {
		s = KeywordStrategy{}
	}
	return &Matcher{strategy: s}
}

// FromConfig builds a matcher from "keyword" or "fuzzy".
func FromConfig(name string, threshold float64) (*Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keyword":
		return New(KeywordStrategy{}), nil
	case "fuzzy":
		return New(NewFuzzyStrategy(threshold)), nil
	}
	return nil, fmt.Errorf("unknown match strategy %q", name)
}

func (m *Matcher) Strategy() Strategy { return m.strategy }

// Match returns the catalog records relevant to any of the issue tokens.
func (m *Matcher) Match(issues []string, c *catalog.Catalog) []catalog.Record {
	tokens := normalizeTokens(issues)
	if len(tokens) == 0 || c.Len() == 0 {
		return nil
	}
	var out []catalog.Record
	c.Each(func(_ int, r catalog.Record) bool {
		for _, tok := range tokens {
			if m.strategy.Matches(tok, r) {
				out = append(out, r)
				break
			}
		}
		return true
	})
	return out
}

// MatchedBy returns the tokens that hit r; used for display.
func (m *Matcher) MatchedBy(issues []string, r catalog.Record) []string {
	var out []string
	for _, tok := range normalizeTokens(issues) {
		if m.strategy.Matches(tok, r) {
			out = append(out, tok)
		}
	}
	return out
}

// Top returns the first n matches in catalog order. This is a fixed-size
// prefix, not a relevance ranking.
func Top(matches []catalog.Record, n int) []catalog.Record {
	if n <= 0 || len(matches) == 0 {
		return nil
	}
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}

func normalizeTokens(issues []string) []string {
	out := make([]string, 0, len(issues))
	seen := make(map[string]struct{}, len(issues))
	for _, s := range issues {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// KeywordStrategy: the token is one of the record's keywords, or a
// case-insensitive substring of its description or title.
type KeywordStrategy struct{}

func (KeywordStrategy) Name() string { return "keyword" }

func (KeywordStrategy) Matches(token string, r catalog.Record) bool {
	if r.HasKeyword(token) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), token) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), token)
}

// FuzzyStrategy extends KeywordStrategy with edit-distance similarity between the
// token and each keyword or title word.
type FuzzyStrategy struct {
	Threshold float64
	params    *levenshtein.Params
}

func NewFuzzyStrategy(threshold float64) FuzzyStrategy {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return FuzzyStrategy{Threshold: threshold, params: levenshtein.NewParams()}
}

func (FuzzyStrategy) Name() string { return "fuzzy" }

func (f FuzzyStrategy) Matches(token string, r catalog.Record) bool {
	if (KeywordStrategy{}).Matches(token, r) {
		return true
	}
	for _, k := range r.Keywords {
		if f.Similarity(token, k) >= f.Threshold {
			return true
		}
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(r.Title), isSeparator) {
		if f.Similarity(token, w) >= f.Threshold {
			return true
		}
	}
	return false
}

// Similarity is 1 for identical strings and 0 for completely different ones.
func (f FuzzyStrategy) Similarity(a, b string) float64 {
	p := f.params
	if p == nil {
		p = levenshtein.NewParams()
	}
	return levenshtein.Similarity(a, b, p)
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}

package llm

import (
	"strings"

	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
)

const (
	DefaultInputCap       = 600
	DefaultTopN           = 5
	descriptionCap        = 240
	promptInstructionLine = "Summarize the road safety issue and suggest top interventions."
)

// BuildPrompt composes the summary prompt from the first inputCap characters of
// the issue text and the first topN matches in catalog order.
func BuildPrompt(issueText string, matches []catalog.Record, inputCap, topN int) string {
	if inputCap <= 0 {
		inputCap = DefaultInputCap
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	var b strings.Builder
	b.WriteString(promptInstructionLine)
	b.WriteString(" Keep it short and practical for a road safety engineer.")
	b.WriteString("\n\nIssue:\n")
	b.WriteString(truncateRunes(strings.TrimSpace(issueText), inputCap))
	b.WriteString("\n\nInterventions:\n")
	if len(matches) == 0 {
		b.WriteString("(no matching interventions in the catalog)\n")
	}
	for i, r := range matches {
		if i == topN {
			break
		}
		b.WriteString("- ")
		b.WriteString(r.Title)
		if ref := reference(r); ref != "" {
			b.WriteString(" [")
			b.WriteString(ref)
			b.WriteString("]")
		}
		if r.CostTier != "" {
			b.WriteString(" cost: ")
			b.WriteString(r.CostTier)
		}
		if d := strings.TrimSpace(r.Description); d != "" {
			b.WriteString(": ")
			b.WriteString(truncateRunes(d, descriptionCap))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func reference(r catalog.Record) string {
	switch {
	case r.IRCCode != "" && r.Clause != "":
		return r.IRCCode + " cl. " + r.Clause
	case r.IRCCode != "":
		return r.IRCCode
	}
	return ""
}

// truncateRunes cuts s to at most n characters without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

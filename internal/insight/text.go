package insight

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MaxSummaryLength is the rune budget of a summary, ellipsis included.
	MaxSummaryLength = 240
	// NoSummary is returned when the content has no visible text.
	NoSummary = "No summary available."

	ellipsis       = "…"
	maxKeywords    = 5
	minKeywordFreq = 2
)

var (
	keywordPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)
	termPattern    = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// Normalize lower-cases text for matching. A Caser keeps internal state, so one is
// built per call.
func Normalize(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Summarize collapses whitespace and fits the text into MaxSummaryLength runes,
// keeping whole words. A first word too long to fit leaves only the ellipsis.
func Summarize(content string) string {
	return summarize(content, MaxSummaryLength)
}

func summarize(content string, limit int) string {
	cleaned := strings.Join(strings.Fields(content), " ")
	if cleaned == "" {
		return NoSummary
	}
	if utf8.RuneCountInString(cleaned) <= limit {
		return cleaned
	}

	budget := limit - utf8.RuneCountInString(ellipsis)
	runes := []rune(cleaned)
	head := runes[:budget]

	// Cut at the last space or letter-hyphen-letter break that fits. With no
	// such break the summary is the ellipsis alone.
	if runes[budget] != ' ' && !hyphenBreak(runes, budget) {
		cut := 0
		for i := budget - 1; i > 0; i-- {
			if head[i] == ' ' || hyphenBreak(runes, i) {
				cut = i
				break
			}
		}
		head = head[:cut]
	}
	return strings.TrimRight(string(head), " ") + ellipsis
}

// hyphenBreak reports whether a line may break before runes[i] because it
// follows a hyphen joining two letters.
func hyphenBreak(runes []rune, i int) bool {
	return i >= 2 && i < len(runes) &&
		runes[i-1] == '-' && unicode.IsLetter(runes[i-2]) && unicode.IsLetter(runes[i])
}

// ExtractKeywords returns up to five repeated words of four or more letters,
// sorted. Equal frequencies rank by first appearance.
func ExtractKeywords(normalized string) []string {
	words := keywordPattern.FindAllString(normalized, -1)

	counts := make(map[string]int, len(words))
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})

	keywords := make([]string, 0, maxKeywords)
	for _, w := range order {
		if len(keywords) == maxKeywords {
			break
		}
		if counts[w] < minKeywordFreq {
			break
		}
		keywords = append(keywords, w)
	}

	slices.Sort(keywords)
	return slices.Compact(keywords)
}

// FormatKeywords joins keywords the way they are stored on an insight.
func FormatKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

func terms(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range termPattern.FindAllString(strings.ToLower(text), -1) {
		set[t] = struct{}{}
	}
	return set
}

// Similarity is the set-cosine overlap of the three-letter-plus terms of a and b.
func Similarity(a, b string) float64 {
	return termSimilarity(terms(a), terms(b))
}

func termSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := 0
	for t := range a {
		if _, ok := b[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / math.Sqrt(float64(len(a))*float64(len(b)))
}

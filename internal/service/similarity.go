package service

import (
	"strings"
	"unicode"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// SimilarityMatcher detects duplicate questions by comparing normalized
// token sets against a course's answered queries.
type SimilarityMatcher struct {
	threshold float64
}

// NewSimilarityMatcher constructs a matcher with the given score
// threshold in [0,1].
func NewSimilarityMatcher(threshold float64) *SimilarityMatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.82
	}
	return &SimilarityMatcher{threshold: threshold}
}

// Match returns the closest sufficiently-similar candidate, or nil.
// Candidates are expected ordered most-recently-answered first, so a
// strictly-greater comparison breaks score ties toward the newest
// answer. Pure function: no side effects.
func (m *SimilarityMatcher) Match(candidates []models.Query, question string) (*models.Query, float64) {
	tokens := tokenSet(question)
	if len(tokens) == 0 {
		return nil, 0
	}

	var best *models.Query
	bestScore := 0.0
	for i := range candidates {
		score := jaccard(tokens, tokenSet(candidates[i].Question))
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best == nil || bestScore < m.threshold {
		return nil, bestScore
	}
	return best, bestScore
}

// Score computes the symmetric similarity between two texts in [0,1].
func (m *SimilarityMatcher) Score(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizeText lowercases, strips punctuation and collapses whitespace.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(normalizeText(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

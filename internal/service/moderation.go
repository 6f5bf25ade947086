package service

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Moderation labels attached to flagged submissions.
const (
	ModerationLabelSafe      = "SAFE"
	ModerationLabelProfanity = "PROFANITY"
	ModerationLabelSpam      = "SPAM"
)

// defaultBadWords is the built-in profanity lexicon; deployments extend
// it via INTAKE_EXTRA_BAD_WORDS.
var defaultBadWords = []string{
	"fuck", "shit", "bitch", "bastard", "asshole", "dickhead",
	"whore", "slut", "moron", "idiot", "stupid",
}

var urlPattern = regexp.MustCompile(`https?://`)

// ModerationVerdict is the outcome of classifying one text.
type ModerationVerdict struct {
	Flagged bool
	Label   string
	Score   float64
}

// ModerationFilter classifies question text as appropriate or not using
// a profanity lexicon plus rule-based spam scoring. Deterministic for a
// given lexicon version. The lexical rules cannot fail at runtime; if a
// future classifier backend errors, the filter fails open and logs a
// warning rather than blocking legitimate questions.
type ModerationFilter struct {
	badWords      []string
	spamThreshold float64
	logger        *zap.Logger
}

// NewModerationFilter builds a filter from the built-in lexicon and any
// configured additions.
func NewModerationFilter(extraWords []string, spamThreshold float64, logger *zap.Logger) *ModerationFilter {
	if spamThreshold <= 0 || spamThreshold > 1 {
		spamThreshold = 0.6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	words := make([]string, 0, len(defaultBadWords)+len(extraWords))
	words = append(words, defaultBadWords...)
	for _, w := range extraWords {
		if trimmed := strings.ToLower(strings.TrimSpace(w)); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return &ModerationFilter{badWords: words, spamThreshold: spamThreshold, logger: logger}
}

// Check classifies the text. Spam rules run first, then the lexicon.
func (f *ModerationFilter) Check(text string) ModerationVerdict {
	if score := spamScore(text); score > f.spamThreshold {
		return ModerationVerdict{Flagged: true, Label: ModerationLabelSpam, Score: score}
	}
	if f.containsProfanity(text) {
		return ModerationVerdict{Flagged: true, Label: ModerationLabelProfanity, Score: 0.95}
	}
	return ModerationVerdict{Label: ModerationLabelSafe}
}

func (f *ModerationFilter) containsProfanity(text string) bool {
	tokens := tokenSet(text)
	for _, word := range f.badWords {
		if _, ok := tokens[word]; ok {
			return true
		}
	}
	return false
}

// spamScore accumulates rule weights: repeated links, character runs,
// shouting and duplicated words. Capped at 1.
func spamScore(text string) float64 {
	score := 0.0
	if len(urlPattern.FindAllStringIndex(text, -1)) > 1 {
		score += 0.4
	}
	if hasCharRun(text, 5) {
		score += 0.3
	}
	if isShouting(text) {
		score += 0.2
	}
	words := strings.Fields(strings.ToLower(text))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	if len(words) != len(seen) {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// hasCharRun reports whether the text repeats any single rune at least
// n times in a row.
func hasCharRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isShouting(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

package service

import (
	"math"
	"strings"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// minContentTokens is the point below which a question is considered
// too short to judge; such questions pass as on-topic.
const minContentTokens = 3

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the is are was were be been being am do does did can could " +
			"should would will shall may might must what why how when where " +
			"who whom which i my me mine we our us you your yours he she it " +
			"its they them their of in on at to for from with and or not no " +
			"this that these those there here about into over under again " +
			"please tell give") {
		stopwords[w] = struct{}{}
	}
}

// RelevanceChecker judges whether a question is topically related to
// its course by overlapping the question's content words with the
// course lexicon (configured keywords plus the course name). When the
// checker cannot be confident it errs toward on-topic: blocking a
// legitimate question is worse than letting an off-topic one through.
type RelevanceChecker struct {
	enabled   bool
	threshold float64
}

// NewRelevanceChecker constructs a checker; threshold is the confidence
// required before a question may be ruled off-topic.
func NewRelevanceChecker(enabled bool, threshold float64) *RelevanceChecker {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	return &RelevanceChecker{enabled: enabled, threshold: threshold}
}

// IsOnTopic reports the verdict and the checker's confidence in it.
// Disabled checker, empty course lexicon and short questions all pass.
func (c *RelevanceChecker) IsOnTopic(course *models.Course, text string) (bool, float64) {
	if !c.enabled {
		return true, 0
	}
	lexicon := courseLexicon(course)
	if len(lexicon) == 0 {
		return true, 0
	}
	content := contentTokens(text)
	if len(content) < minContentTokens {
		return true, 0
	}

	matched := 0
	for token := range content {
		if _, ok := lexicon[token]; ok {
			matched++
		}
	}

	if matched > 0 {
		confidence := math.Min(1, 0.5+0.25*float64(matched))
		return true, confidence
	}

	// Zero topical overlap; confidence in the off-topic verdict grows
	// with the amount of content we had to match against.
	confidence := math.Min(1, float64(len(content))/5)
	if confidence >= c.threshold {
		return false, confidence
	}
	return true, confidence
}

func courseLexicon(course *models.Course) map[string]struct{} {
	lexicon := make(map[string]struct{})
	for _, part := range strings.Split(course.Keywords, ",") {
		for token := range tokenSet(part) {
			if _, stop := stopwords[token]; !stop {
				lexicon[token] = struct{}{}
			}
		}
	}
	for token := range tokenSet(course.Name) {
		if _, stop := stopwords[token]; !stop {
			lexicon[token] = struct{}{}
		}
	}
	return lexicon
}

func contentTokens(text string) map[string]struct{} {
	content := make(map[string]struct{})
	for token := range tokenSet(text) {
		if _, stop := stopwords[token]; !stop {
			content[token] = struct{}{}
		}
	}
	return content
}

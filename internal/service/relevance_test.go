package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeyatra/query-engine-api/internal/models"
)

func relevanceCourse() *models.Course {
	return &models.Course{
		Name:     "Operating Systems",
		Keywords: "process, thread, scheduling, deadlock, memory, paging, filesystem",
	}
}

func TestRelevanceCheckerOnTopic(t *testing.T) {
	c := NewRelevanceChecker(true, 0.6)

	ok, confidence := c.IsOnTopic(relevanceCourse(), "explain how deadlock detection works with process scheduling")
	assert.True(t, ok)
	assert.Greater(t, confidence, 0.5)
}

func TestRelevanceCheckerOffTopic(t *testing.T) {
	c := NewRelevanceChecker(true, 0.6)

	ok, confidence := c.IsOnTopic(relevanceCourse(), "recommend good restaurants serving italian pasta near campus tonight")
	assert.False(t, ok)
	assert.GreaterOrEqual(t, confidence, 0.6)
}

func TestRelevanceCheckerShortQuestionPasses(t *testing.T) {
	c := NewRelevanceChecker(true, 0.6)

	ok, _ := c.IsOnTopic(relevanceCourse(), "pasta recipe")
	assert.True(t, ok)
}

func TestRelevanceCheckerDisabled(t *testing.T) {
	c := NewRelevanceChecker(false, 0.6)

	ok, _ := c.IsOnTopic(relevanceCourse(), "recommend good restaurants serving italian pasta near campus tonight")
	assert.True(t, ok)
}

func TestRelevanceCheckerEmptyLexiconPasses(t *testing.T) {
	c := NewRelevanceChecker(true, 0.6)

	ok, _ := c.IsOnTopic(&models.Course{Name: "the", Keywords: ""}, "recommend good restaurants serving italian pasta near campus")
	assert.True(t, ok)
}

func TestRelevanceCheckerCourseNameCountsAsLexicon(t *testing.T) {
	c := NewRelevanceChecker(true, 0.6)

	ok, _ := c.IsOnTopic(&models.Course{Name: "Databases"}, "are databases normalized using functional dependencies")
	assert.True(t, ok)
}

package models

// IntakeOutcome enumerates the possible results of submitting a
// question through the intake pipeline.
type IntakeOutcome string

const (
	IntakeAccepted           IntakeOutcome = "accepted"
	IntakeAutoAnswered       IntakeOutcome = "auto_answered"
	IntakeRejectedModeration IntakeOutcome = "rejected_moderation"
	IntakeRejectedOffTopic   IntakeOutcome = "rejected_off_topic"
)

// IntakeResult is the tagged outcome of a submission. Exactly one of
// Query (accepted) or Match (auto-answered) is set; rejections surface
// as errors before a result is produced.
type IntakeResult struct {
	Outcome IntakeOutcome `json:"outcome"`
	Query   *Query        `json:"query,omitempty"`
	Match   *Query        `json:"match,omitempty"`
	Score   float64       `json:"score,omitempty"`
}

package models

import "time"

// IntakeEvent is the audit record persisted for every intake decision.
// Auto-answered submissions leave no query row, so this trail is the
// only durable evidence they happened.
type IntakeEvent struct {
	ID             string        `db:"id" json:"id"`
	CourseID       string        `db:"course_id" json:"course_id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	Outcome        IntakeOutcome `db:"outcome" json:"outcome"`
	MatchedQueryID *string       `db:"matched_query_id" json:"matched_query_id,omitempty"`
	Score          float64       `db:"score" json:"score"`
	Detail         string        `db:"detail" json:"detail"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

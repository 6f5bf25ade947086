package models

import "time"

// Rating is a 1-5 student evaluation of a teacher's answer to one
// specific query. At most one rating exists per query; re-submission
// updates the value in place.
type Rating struct {
	ID        string    `db:"id" json:"id"`
	QueryID   string    `db:"query_id" json:"query_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Value     int       `db:"value" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

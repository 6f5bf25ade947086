package models

import "time"

// Notification announces a query event to its recipient. Only the
// recipient may mark it read; it is never deleted outside cascades.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	QueryID   string    `db:"query_id" json:"query_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

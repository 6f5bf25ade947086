package models

import "time"

// Course represents a subject a teacher is assigned to. The keywords
// column holds the comma-separated topic lexicon used by the subject
// relevance checker; teacher_name is denormalized for display.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Keywords    string    `db:"keywords" json:"keywords,omitempty"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

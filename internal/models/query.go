package models

import "time"

// Query is a student question on a course, progressing from pending to
// answered. Course/student/teacher fields are retained redundantly so a
// query remains displayable and its rating stays bound to the teacher
// assigned at creation time, even after a course reassignment.
//
// Invariant: Answered is true iff Answer and AnsweredAt are both set.
type Query struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	CourseName  string     `db:"course_name" json:"course_name"`
	TeacherID   string     `db:"teacher_id" json:"teacher_id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	StudentName string     `db:"student_name" json:"student_name"`
	StudentRoll string     `db:"student_roll" json:"student_roll"`
	Question    string     `db:"question" json:"question"`
	Answer      *string    `db:"answer" json:"answer"`
	Answered    bool       `db:"answered" json:"answered"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	AnsweredAt  *time.Time `db:"answered_at" json:"answered_at"`
}

// CourseStudent summarises a student who asked in a course, for the
// teacher's per-course view.
type CourseStudent struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	StudentRoll string `json:"student_roll"`
	HasPending  bool   `json:"has_pending"`
}

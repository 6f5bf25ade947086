package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// User represents an application user stored in the users table. For
// teachers the average_rating / total_ratings columns hold the rating
// summary recomputed on every rating upsert.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	FullName      string    `db:"full_name" json:"name"`
	Roll          string    `db:"roll" json:"roll"`
	Role          UserRole  `db:"role" json:"role"`
	Active        bool      `db:"active" json:"active"`
	AverageRating float64   `db:"average_rating" json:"average_rating"`
	TotalRatings  int       `db:"total_ratings" json:"total_ratings"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherRatingSummary is the live per-teacher aggregate served to
// clients and kept consistent under concurrent rating writes.
type TeacherRatingSummary struct {
	TeacherID     string  `db:"teacher_id" json:"teacher_id"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	TotalRatings  int     `db:"total_ratings" json:"total_ratings"`
}

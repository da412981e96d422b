package models

import "time"

// EnrollmentStatus enumerates the lifecycle states of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment binds a student to a course. The pair (user_id, course_id)
// is unique. The grade column is the canonical grade store.
type Enrollment struct {
	ID             int64            `db:"id" json:"enrollment_id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Grade          *string          `db:"grade" json:"grade,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// EnrollmentDetail joins an enrollment with course and student info.
type EnrollmentDetail struct {
	Enrollment
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	StudentName string `db:"student_name" json:"student_name"`
}

// CourseRosterEntry lists a student enrolled in a course.
type CourseRosterEntry struct {
	EnrollmentID int64  `db:"enrollment_id" json:"enrollment_id"`
	UserID       int64  `db:"user_id" json:"user_id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	Email        string `db:"email" json:"email"`
}

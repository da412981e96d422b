package models

import "time"

// CourseAssignment binds an instructor to a course. The pair
// (instructor_id, course_id) is unique.
type CourseAssignment struct {
	ID           int64     `db:"id" json:"assignment_id"`
	InstructorID int64     `db:"instructor_id" json:"instructor_id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseAssignmentDetail joins an assignment with instructor and course info.
type CourseAssignmentDetail struct {
	CourseAssignment
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
}

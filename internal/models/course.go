package models

import "time"

// Course represents a course in the catalog. Department and semester
// references are optional.
type Course struct {
	ID           int64     `db:"id" json:"course_id"`
	Name         string    `db:"name" json:"course_name"`
	Code         string    `db:"code" json:"course_code"`
	DepartmentID *int64    `db:"department_id" json:"department_id,omitempty"`
	SemesterID   *int64    `db:"semester_id" json:"semester_id,omitempty"`
	Credits      int       `db:"credits" json:"credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseDetail is a course joined with its department name for listings.
type CourseDetail struct {
	Course
	DepartmentName *string `db:"department_name" json:"department_name,omitempty"`
}

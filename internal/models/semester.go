package models

import "time"

// Semester names form a fixed two-value enumeration.
const (
	SemesterFirst  = "First Semester"
	SemesterSecond = "Second Semester"
)

// Semester represents an academic semester.
type Semester struct {
	ID        int64     `db:"id" json:"semester_id"`
	Name      string    `db:"name" json:"semester_name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

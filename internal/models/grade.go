package models

// GradedCourse is a completed, graded course row feeding the transcript.
type GradedCourse struct {
	SemesterID   int64  `db:"semester_id" json:"-"`
	SemesterName string `db:"semester_name" json:"-"`
	CourseCode   string `db:"course_code" json:"code"`
	CourseName   string `db:"course_name" json:"name"`
	Credits      int    `db:"credits" json:"credits"`
	Grade        string `db:"grade" json:"grade"`
}

// SemesterReport groups a student's graded courses for one semester.
type SemesterReport struct {
	SemesterID       int64          `json:"semester_id"`
	Name             string         `json:"name"`
	Courses          []GradedCourse `json:"courses"`
	CreditsCompleted int            `json:"credits_completed"`
	GPA              float64        `json:"gpa"`
}

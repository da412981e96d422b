package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisms/university-api/internal/models"
)

const enrollmentColumns = "id, user_id, course_id, enrollment_date, status, grade, created_at"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create persists a new enrollment and fills in the generated id.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (user_id, course_id, enrollment_date, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, enrollment.UserID, enrollment.CourseID, enrollment.EnrollmentDate, enrollment.Status)
	if err := row.Scan(&enrollment.ID, &enrollment.CreatedAt); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the student is already enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment uniqueness: %w", err)
	}
	return true, nil
}

// List returns enrollments joined with course and student info,
// optionally scoped to one student.
func (r *EnrollmentRepository) List(ctx context.Context, userID int64) ([]models.EnrollmentDetail, error) {
	query := `SELECT e.id, e.user_id, e.course_id, e.enrollment_date, e.status, e.grade, e.created_at,
        c.name AS course_name, c.code AS course_code,
        u.first_name || ' ' || u.last_name AS student_name
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        JOIN users u ON u.id = e.user_id`
	var args []interface{}
	if userID > 0 {
		query += " WHERE e.user_id = $1"
		args = append(args, userID)
	}
	query += " ORDER BY e.id"
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns the enrolled-student roster for a course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error) {
	const query = `SELECT e.id AS enrollment_id, e.user_id, u.first_name, u.last_name, u.email
        FROM enrollments e
        JOIN users u ON u.id = e.user_id
        WHERE e.course_id = $1 AND u.role = $2
        ORDER BY e.id`
	var roster []models.CourseRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, courseID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return roster, nil
}

// Update applies the supplied column values to the enrollment row.
func (r *EnrollmentRepository) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	if len(set) == 0 {
		return nil
	}
	clause, args, next := buildSetClause(set, 1)
	query := fmt.Sprintf("UPDATE enrollments SET %s WHERE id = $%d", clause, next)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// UpdateGrade sets the grade column for an enrollment.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, id int64, grade string) error {
	const query = `UPDATE enrollments SET grade = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, grade); err != nil {
		return fmt.Errorf("update enrollment grade: %w", err)
	}
	return nil
}

// Delete removes the enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListGraded returns the student's completed, graded enrollments joined
// with course and semester info for the transcript.
func (r *EnrollmentRepository) ListGraded(ctx context.Context, userID int64) ([]models.GradedCourse, error) {
	const query = `SELECT s.id AS semester_id, s.name AS semester_name,
        c.code AS course_code, c.name AS course_name, c.credits, e.grade
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        JOIN semesters s ON s.id = c.semester_id
        WHERE e.user_id = $1 AND e.status = $2 AND e.grade IS NOT NULL
        ORDER BY s.id, c.code`
	var rows []models.GradedCourse
	if err := r.db.SelectContext(ctx, &rows, query, userID, models.EnrollmentStatusCompleted); err != nil {
		return nil, fmt.Errorf("list graded enrollments: %w", err)
	}
	return rows, nil
}

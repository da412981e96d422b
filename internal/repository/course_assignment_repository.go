package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisms/university-api/internal/models"
)

// CourseAssignmentRepository handles persistence of instructor-course
// assignments.
type CourseAssignmentRepository struct {
	db *sqlx.DB
}

// NewCourseAssignmentRepository constructs the repository.
func NewCourseAssignmentRepository(db *sqlx.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{db: db}
}

// Create persists a new assignment and fills in the generated id.
func (r *CourseAssignmentRepository) Create(ctx context.Context, assignment *models.CourseAssignment) error {
	const query = `INSERT INTO course_assignments (instructor_id, course_id)
        VALUES ($1, $2)
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, assignment.InstructorID, assignment.CourseID)
	if err := row.Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return fmt.Errorf("create course assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment by its ID.
func (r *CourseAssignmentRepository) FindByID(ctx context.Context, id int64) (*models.CourseAssignment, error) {
	const query = `SELECT id, instructor_id, course_id, created_at FROM course_assignments WHERE id = $1`
	var assignment models.CourseAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Exists reports whether the instructor is already assigned to the course.
func (r *CourseAssignmentRepository) Exists(ctx context.Context, instructorID, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM course_assignments WHERE instructor_id = $1 AND course_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, instructorID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment uniqueness: %w", err)
	}
	return true, nil
}

// List returns assignments joined with instructor and course info,
// optionally scoped to one instructor.
func (r *CourseAssignmentRepository) List(ctx context.Context, instructorID int64) ([]models.CourseAssignmentDetail, error) {
	query := `SELECT ca.id, ca.instructor_id, ca.course_id, ca.created_at,
        c.code AS course_code, c.name AS course_name, u.first_name, u.last_name
        FROM course_assignments ca
        JOIN courses c ON c.id = ca.course_id
        JOIN users u ON u.id = ca.instructor_id`
	var args []interface{}
	if instructorID > 0 {
		query += " WHERE ca.instructor_id = $1"
		args = append(args, instructorID)
	}
	query += " ORDER BY ca.id"
	var assignments []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list course assignments: %w", err)
	}
	return assignments, nil
}

// Delete removes the assignment row.
func (r *CourseAssignmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM course_assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course assignment: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisms/university-api/internal/models"
)

const courseColumns = "id, name, code, department_id, semester_id, credits, created_at"

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create persists a new course and fills in the generated id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name, code, department_id, semester_id, credits)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, course.Name, course.Code, course.DepartmentID, course.SemesterID, course.Credits)
	if err := row.Scan(&course.ID, &course.CreatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns all courses joined with their department names.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseDetail, error) {
	const query = `SELECT c.id, c.name, c.code, c.department_id, c.semester_id, c.credits, c.created_at,
        d.name AS department_name
        FROM courses c
        LEFT JOIN departments d ON d.id = c.department_id
        ORDER BY c.id`
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ExistsByCode reports whether another course holds the code.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code uniqueness: %w", err)
	}
	return true, nil
}

// CountBySemester returns how many courses reference a semester.
func (r *CourseRepository) CountBySemester(ctx context.Context, semesterID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM courses WHERE semester_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, semesterID); err != nil {
		return 0, fmt.Errorf("count courses by semester: %w", err)
	}
	return count, nil
}

// Update applies the supplied column values to the course row.
func (r *CourseRepository) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	if len(set) == 0 {
		return nil
	}
	clause, args, next := buildSetClause(set, 1)
	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d", clause, next)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes the course row.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

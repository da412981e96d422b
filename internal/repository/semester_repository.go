package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisms/university-api/internal/models"
)

// SemesterRepository handles persistence of semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Create persists a new semester and fills in the generated id.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	const query = `INSERT INTO semesters (name, start_date, end_date)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, semester.Name, semester.StartDate, semester.EndDate)
	if err := row.Scan(&semester.ID, &semester.CreatedAt); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// FindByID returns a semester by its ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	const query = `SELECT id, name, start_date, end_date, created_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// List returns all semesters.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT id, name, start_date, end_date, created_at FROM semesters ORDER BY id`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// Update applies the supplied column values to the semester row.
func (r *SemesterRepository) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	if len(set) == 0 {
		return nil
	}
	clause, args, next := buildSetClause(set, 1)
	query := fmt.Sprintf("UPDATE semesters SET %s WHERE id = $%d", clause, next)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// Delete removes the semester row.
func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM semesters WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unisms/university-api/internal/models"
)

// DepartmentRepository handles persistence of departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create persists a new department and fills in the generated id.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	const query = `INSERT INTO departments (name, code) VALUES ($1, $2) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, department.Name, department.Code)
	if err := row.Scan(&department.ID, &department.CreatedAt); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// FindByID returns a department by its ID.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	const query = `SELECT id, name, code, created_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// List returns all departments.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, code, created_at FROM departments ORDER BY id`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// ExistsByCodeOrName reports whether another department holds the code
// or name.
func (r *DepartmentRepository) ExistsByCodeOrName(ctx context.Context, code, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM departments WHERE (code = $1 OR name = $2)"
	args := []interface{}{code, name}
	if excludeID > 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check department uniqueness: %w", err)
	}
	return true, nil
}

// Update applies the supplied column values to the department row.
func (r *DepartmentRepository) Update(ctx context.Context, id int64, set map[string]interface{}) error {
	if len(set) == 0 {
		return nil
	}
	clause, args, next := buildSetClause(set, 1)
	query := fmt.Sprintf("UPDATE departments SET %s WHERE id = $%d", clause, next)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// Delete removes the department row.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM departments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return nil
}

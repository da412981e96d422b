package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
)

func TestDepartmentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO departments (name, code) VALUES ($1, $2) RETURNING id, created_at")).
		WithArgs("Computer Science", "CS").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	department := &models.Department{Name: "Computer Science", Code: "CS"}
	require.NoError(t, repo.Create(context.Background(), department))
	assert.Equal(t, int64(1), department.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentExistsByCodeOrNameExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE (code = $1 OR name = $2) AND id <> $3 LIMIT 1")).
		WithArgs("CS", "Computer Science", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByCodeOrName(context.Background(), "CS", "Computer Science", 1)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "code", "created_at"}).
		AddRow(int64(1), "Computer Science", "CS", now).
		AddRow(int64(2), "Mathematics", "MATH", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, created_at FROM departments ORDER BY id")).
		WillReturnRows(rows)

	departments, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, departments, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE departments SET code = $1, name = $2 WHERE id = $3")).
		WithArgs("EE", "Electrical Engineering", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 2, map[string]interface{}{
		"name": "Electrical Engineering",
		"code": "EE",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

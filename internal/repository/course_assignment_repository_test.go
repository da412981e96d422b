package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
)

func TestAssignmentCreateReturnsGeneratedID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	mock.ExpectQuery("INSERT INTO course_assignments").
		WithArgs(int64(3), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), time.Now()))

	assignment := &models.CourseAssignment{InstructorID: 3, CourseID: 10}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.Equal(t, int64(4), assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM course_assignments WHERE instructor_id = \$1 AND course_id = \$2 LIMIT 1`).
		WithArgs(int64(3), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(`SELECT 1 FROM course_assignments WHERE instructor_id = \$1 AND course_id = \$2 LIMIT 1`).
		WithArgs(int64(4), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.Exists(context.Background(), 4, 10)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListScopedToInstructor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "instructor_id", "course_id", "created_at", "course_code", "course_name", "first_name", "last_name"}).
		AddRow(int64(4), int64(3), int64(10), time.Now(), "CS201", "Data Structures", "Kebede", "Alemu")

	mock.ExpectQuery(`WHERE ca\.instructor_id = \$1 ORDER BY ca\.id`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	assignments, err := repo.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "CS201", assignments[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentDeleteRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseAssignmentRepository(db)

	mock.ExpectExec(`DELETE FROM course_assignments WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

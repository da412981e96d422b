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

func TestCourseCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("Data Structures", "CS201", nil, nil, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	course := &models.Course{Name: "Data Structures", Code: "CS201", Credits: 4}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(3), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseExistsByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE code = $1 LIMIT 1")).
		WithArgs("CS201").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "CS201", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseCountBySemester(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE semester_id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountBySemester(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseListJoinsDepartmentName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "code", "department_id", "semester_id", "credits", "created_at", "department_name"}).
		AddRow(int64(1), "Data Structures", "CS201", int64(1), int64(1), 4, now, "Computer Science")
	mock.ExpectQuery("LEFT JOIN departments").WillReturnRows(rows)

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.NotNil(t, courses[0].DepartmentName)
	assert.Equal(t, "Computer Science", *courses[0].DepartmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

func newTestCourseService(repo *fakeCourseStore, departments *fakeDepartmentStore, semesters *fakeSemesterStore) *CourseService {
	return NewCourseService(repo, departments, semesters, nil, time.Minute, nil, nil, nil)
}

func TestCourseCreate(t *testing.T) {
	repo := newFakeCourseStore()
	departments := newFakeDepartmentStore()
	departments.add(&models.Department{ID: 3, Name: "Software Engineering", Code: "SWE"})
	semesters := newFakeSemesterStore()
	semesters.add(&models.Semester{ID: 2, Name: models.SemesterFirst})
	svc := newTestCourseService(repo, departments, semesters)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:         "Data Structures",
		Code:         "CS201",
		DepartmentID: int64Ptr(3),
		SemesterID:   int64Ptr(2),
		Credits:      4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), course.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "CS201", repo.created[0].Code)
}

func TestCourseCreateDuplicateCode(t *testing.T) {
	repo := newFakeCourseStore()
	repo.codeTaken = true
	svc := newTestCourseService(repo, newFakeDepartmentStore(), newFakeSemesterStore())

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:    "Data Structures",
		Code:    "CS201",
		Credits: 4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCourseCreateUnknownReferences(t *testing.T) {
	repo := newFakeCourseStore()
	svc := newTestCourseService(repo, newFakeDepartmentStore(), newFakeSemesterStore())

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:         "Data Structures",
		Code:         "CS201",
		DepartmentID: int64Ptr(3),
		Credits:      4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateCourseRequest{
		Name:       "Data Structures",
		Code:       "CS201",
		SemesterID: int64Ptr(2),
		Credits:    4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCourseCreateRejectsZeroCredits(t *testing.T) {
	repo := newFakeCourseStore()
	svc := newTestCourseService(repo, newFakeDepartmentStore(), newFakeSemesterStore())

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Name: "Data Structures",
		Code: "CS201",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseUpdateWithoutFields(t *testing.T) {
	repo := newFakeCourseStore()
	repo.add(&models.Course{ID: 10, Name: "Data Structures", Code: "CS201", Credits: 4})
	svc := newTestCourseService(repo, newFakeDepartmentStore(), newFakeSemesterStore())

	_, err := svc.Update(context.Background(), 10, UpdateCourseRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOp.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updates)
}

func TestCourseUpdateCredits(t *testing.T) {
	repo := newFakeCourseStore()
	repo.add(&models.Course{ID: 10, Name: "Data Structures", Code: "CS201", Credits: 4})
	svc := newTestCourseService(repo, newFakeDepartmentStore(), newFakeSemesterStore())

	_, err := svc.Update(context.Background(), 10, UpdateCourseRequest{Credits: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"credits": 3}, repo.updates[10])
}

func TestCourseDeleteMissing(t *testing.T) {
	svc := newTestCourseService(newFakeCourseStore(), newFakeDepartmentStore(), newFakeSemesterStore())

	err := svc.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

func newTestAssignmentService(repo *fakeAssignmentStore, users *fakeUserStore, courses *fakeCourseStore) *CourseAssignmentService {
	return NewCourseAssignmentService(repo, users, courses, nil, nil)
}

func TestAssignmentCreate(t *testing.T) {
	repo := newFakeAssignmentStore()
	users := newFakeUserStore()
	users.add(&models.User{ID: 3, Email: "kebede@example.com", Role: models.RoleInstructor})
	courses := newFakeCourseStore()
	courses.add(&models.Course{ID: 10, Name: "Data Structures", Code: "CS201", Credits: 4})
	svc := newTestAssignmentService(repo, users, courses)

	assignment, err := svc.Create(context.Background(), CreateCourseAssignmentRequest{InstructorID: 3, CourseID: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), assignment.ID)
	require.Len(t, repo.created, 1)
}

func TestAssignmentCreateTargetMustBeInstructor(t *testing.T) {
	repo := newFakeAssignmentStore()
	users := newFakeUserStore()
	users.add(&models.User{ID: 5, Email: "abebe@example.com", Role: models.RoleStudent})
	courses := newFakeCourseStore()
	courses.add(&models.Course{ID: 10, Name: "Data Structures", Code: "CS201", Credits: 4})
	svc := newTestAssignmentService(repo, users, courses)

	_, err := svc.Create(context.Background(), CreateCourseAssignmentRequest{InstructorID: 5, CourseID: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestAssignmentCreateDuplicatePair(t *testing.T) {
	repo := newFakeAssignmentStore()
	repo.assign(3, 10)
	users := newFakeUserStore()
	users.add(&models.User{ID: 3, Email: "kebede@example.com", Role: models.RoleInstructor})
	courses := newFakeCourseStore()
	courses.add(&models.Course{ID: 10, Name: "Data Structures", Code: "CS201", Credits: 4})
	svc := newTestAssignmentService(repo, users, courses)

	_, err := svc.Create(context.Background(), CreateCourseAssignmentRequest{InstructorID: 3, CourseID: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
}

func TestAssignmentCreateUnknownCourse(t *testing.T) {
	repo := newFakeAssignmentStore()
	users := newFakeUserStore()
	users.add(&models.User{ID: 3, Email: "kebede@example.com", Role: models.RoleInstructor})
	svc := newTestAssignmentService(repo, users, newFakeCourseStore())

	_, err := svc.Create(context.Background(), CreateCourseAssignmentRequest{InstructorID: 3, CourseID: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)
}

func TestAssignmentListScopes(t *testing.T) {
	repo := newFakeAssignmentStore()
	svc := newTestAssignmentService(repo, newFakeUserStore(), newFakeCourseStore())

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), repo.listedFor)

	_, err = svc.ListForInstructor(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), repo.listedFor)
}

func TestAssignmentDelete(t *testing.T) {
	repo := newFakeAssignmentStore()
	repo.assignments[4] = &models.CourseAssignment{ID: 4, InstructorID: 3, CourseID: 10}
	svc := newTestAssignmentService(repo, newFakeUserStore(), newFakeCourseStore())

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, []int64{4}, repo.deleted)

	err := svc.Delete(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

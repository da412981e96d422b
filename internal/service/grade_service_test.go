package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

func newTestGradeService(enrollments *fakeEnrollmentStore, assignments *fakeAssignmentStore) *GradeService {
	return NewGradeService(enrollments, assignments, nil, nil)
}

func TestGradeSubmit(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.add(&models.Enrollment{ID: 1, UserID: 5, CourseID: 10, Status: models.EnrollmentStatusCompleted})
	assignments := newFakeAssignmentStore()
	assignments.assign(3, 10)
	svc := newTestGradeService(enrollments, assignments)

	enrollment, err := svc.Submit(context.Background(), instructorClaims(3), SubmitGradeRequest{EnrollmentID: 1, Grade: "B+"})
	require.NoError(t, err)
	require.NotNil(t, enrollment.Grade)
	assert.Equal(t, "B+", *enrollment.Grade)
	assert.Equal(t, "B+", enrollments.grades[1])
}

func TestGradeSubmitUnassignedInstructor(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.add(&models.Enrollment{ID: 1, UserID: 5, CourseID: 10, Status: models.EnrollmentStatusCompleted})
	svc := newTestGradeService(enrollments, newFakeAssignmentStore())

	_, err := svc.Submit(context.Background(), instructorClaims(4), SubmitGradeRequest{EnrollmentID: 1, Grade: "B+"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, enrollments.grades)
}

func TestGradeSubmitByAdmin(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.add(&models.Enrollment{ID: 1, UserID: 5, CourseID: 10, Status: models.EnrollmentStatusCompleted})
	svc := newTestGradeService(enrollments, newFakeAssignmentStore())

	_, err := svc.Submit(context.Background(), adminClaims(1), SubmitGradeRequest{EnrollmentID: 1, Grade: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", enrollments.grades[1])
}

func TestGradeSubmitRejectsBadGrade(t *testing.T) {
	svc := newTestGradeService(newFakeEnrollmentStore(), newFakeAssignmentStore())

	_, err := svc.Submit(context.Background(), adminClaims(1), SubmitGradeRequest{EnrollmentID: 1, Grade: "AA"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeGetByEnrollmentVisibility(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	grade := "A"
	enrollments.add(&models.Enrollment{ID: 1, UserID: 5, CourseID: 10, Status: models.EnrollmentStatusCompleted, Grade: &grade})
	assignments := newFakeAssignmentStore()
	assignments.assign(3, 10)
	svc := newTestGradeService(enrollments, assignments)

	value, err := svc.GetByEnrollment(context.Background(), studentClaims(5), 1)
	require.NoError(t, err)
	require.NotNil(t, value.Grade)
	assert.Equal(t, "A", *value.Grade)

	_, err = svc.GetByEnrollment(context.Background(), instructorClaims(3), 1)
	require.NoError(t, err)

	_, err = svc.GetByEnrollment(context.Background(), studentClaims(6), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBuildSemesterReports(t *testing.T) {
	graded := []models.GradedCourse{
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS201", CourseName: "Data Structures", Credits: 3, Grade: "A"},
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS202", CourseName: "Algorithms", Credits: 4, Grade: "B+"},
		{SemesterID: 2, SemesterName: "Second Semester", CourseCode: "CS301", CourseName: "Databases", Credits: 3, Grade: "C"},
		{SemesterID: 2, SemesterName: "Second Semester", CourseCode: "CS302", CourseName: "Networks", Credits: 2, Grade: "F"},
	}

	reports := buildSemesterReports(graded)
	require.Len(t, reports, 2)

	first := reports[0]
	assert.Equal(t, int64(1), first.SemesterID)
	assert.Equal(t, "First Semester", first.Name)
	assert.Len(t, first.Courses, 2)
	assert.Equal(t, 7, first.CreditsCompleted)
	// (4.0*3 + 3.5*4) / 7 = 3.714..., rounded to one decimal.
	assert.Equal(t, 3.7, first.GPA)

	second := reports[1]
	assert.Equal(t, 5, second.CreditsCompleted)
	assert.Equal(t, 1.2, second.GPA)
}

func TestBuildSemesterReportsUnknownGrade(t *testing.T) {
	graded := []models.GradedCourse{
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS201", CourseName: "Data Structures", Credits: 3, Grade: "A"},
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS202", CourseName: "Algorithms", Credits: 3, Grade: "I"},
	}

	reports := buildSemesterReports(graded)
	require.Len(t, reports, 1)

	// Unrecognised grades still count their credits but earn no points.
	assert.Equal(t, 6, reports[0].CreditsCompleted)
	assert.Equal(t, 2.0, reports[0].GPA)
}

func TestBuildSemesterReportsEmpty(t *testing.T) {
	reports := buildSemesterReports(nil)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestGradeReport(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.graded = []models.GradedCourse{
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS201", CourseName: "Data Structures", Credits: 3, Grade: "A"},
	}
	svc := newTestGradeService(enrollments, newFakeAssignmentStore())

	reports, err := svc.Report(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 4.0, reports[0].GPA)
}

func TestRenderTranscript(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.graded = []models.GradedCourse{
		{SemesterID: 1, SemesterName: "First Semester", CourseCode: "CS201", CourseName: "Data Structures", Credits: 3, Grade: "A"},
	}
	svc := newTestGradeService(enrollments, newFakeAssignmentStore())

	data, err := svc.RenderTranscript(context.Background(), studentClaims(5))
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderTranscriptWithoutGrades(t *testing.T) {
	svc := newTestGradeService(newFakeEnrollmentStore(), newFakeAssignmentStore())

	_, err := svc.RenderTranscript(context.Background(), studentClaims(5))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

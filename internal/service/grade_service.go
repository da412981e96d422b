package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
	"github.com/unisms/university-api/pkg/export"
)

// gradePoints maps letter grades to GPA points on a 4.0 scale.
var gradePoints = map[string]float64{
	"A":  4.0,
	"A-": 3.75,
	"B+": 3.5,
	"B":  3.0,
	"B-": 2.75,
	"C+": 2.5,
	"C":  2.0,
	"C-": 1.75,
	"D+": 1.5,
	"D":  1.0,
	"F":  0.0,
}

type gradeEnrollmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	UpdateGrade(ctx context.Context, id int64, grade string) error
	ListGraded(ctx context.Context, userID int64) ([]models.GradedCourse, error)
}

// SubmitGradeRequest records a letter grade against an enrollment.
type SubmitGradeRequest struct {
	EnrollmentID int64  `json:"enrollment_id" validate:"required,min=1"`
	Grade        string `json:"grade" validate:"required,grade"`
}

// GradeValue is the response body for a single grade lookup.
type GradeValue struct {
	Grade *string `json:"grade"`
}

// GradeService handles grade submission, lookup, and GPA reporting.
type GradeService struct {
	enrollments gradeEnrollmentRepository
	assignments assignmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
	pdf         *export.PDFExporter
}

// NewGradeService constructs GradeService.
func NewGradeService(enrollments gradeEnrollmentRepository, assignments assignmentChecker, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		enrollments: enrollments,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
		pdf:         export.NewPDFExporter(),
	}
}

// Submit records a grade for an enrollment. Instructors must be
// assigned to the enrollment's course; admins may grade any enrollment.
// Submitting again overwrites the previous grade.
func (s *GradeService) Submit(ctx context.Context, actor *models.JWTClaims, req SubmitGradeRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if !actor.IsAdmin() {
		assigned, err := s.assignments.Exists(ctx, actor.UserID, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
		}
		if !assigned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this course")
		}
	}

	if err := s.enrollments.UpdateGrade(ctx, req.EnrollmentID, req.Grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	grade := req.Grade
	enrollment.Grade = &grade
	return enrollment, nil
}

// GetByEnrollment returns the grade of one enrollment, restricted to
// the owning student, an assigned instructor, or an admin.
func (s *GradeService) GetByEnrollment(ctx context.Context, actor *models.JWTClaims, enrollmentID int64) (*GradeValue, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if !actor.IsAdmin() && enrollment.UserID != actor.UserID {
		assigned, err := s.assignments.Exists(ctx, actor.UserID, enrollment.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
		}
		if !assigned {
			return nil, appErrors.ErrForbidden
		}
	}

	return &GradeValue{Grade: enrollment.Grade}, nil
}

// Report builds the per-semester GPA report of one student from their
// completed, graded enrollments.
func (s *GradeService) Report(ctx context.Context, studentID int64) ([]models.SemesterReport, error) {
	graded, err := s.enrollments.ListGraded(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list graded courses")
	}
	return buildSemesterReports(graded), nil
}

// RenderTranscript renders the student's GPA report as a PDF document.
func (s *GradeService) RenderTranscript(ctx context.Context, actor *models.JWTClaims) ([]byte, error) {
	reports, err := s.Report(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no graded courses to export")
	}

	sections := make([]export.Section, 0, len(reports))
	for _, report := range reports {
		rows := make([][]string, 0, len(report.Courses))
		for _, course := range report.Courses {
			rows = append(rows, []string{course.CourseCode, course.CourseName, fmt.Sprintf("%d", course.Credits), course.Grade})
		}
		sections = append(sections, export.Section{
			Heading: report.Name,
			Headers: []string{"Code", "Course", "Credits", "Grade"},
			Rows:    rows,
			Footer:  fmt.Sprintf("Credits: %d   GPA: %.1f", report.CreditsCompleted, report.GPA),
		})
	}

	title := fmt.Sprintf("Grade Transcript - %s", actor.FirstName)
	return s.pdf.Render(title, sections)
}

// buildSemesterReports groups graded courses by semester, preserving
// the semester order of the input, and computes a credit-weighted GPA
// rounded to one decimal.
func buildSemesterReports(graded []models.GradedCourse) []models.SemesterReport {
	reports := make([]models.SemesterReport, 0)
	index := map[int64]int{}

	for _, course := range graded {
		i, ok := index[course.SemesterID]
		if !ok {
			i = len(reports)
			index[course.SemesterID] = i
			reports = append(reports, models.SemesterReport{
				SemesterID: course.SemesterID,
				Name:       course.SemesterName,
				Courses:    []models.GradedCourse{},
			})
		}
		reports[i].Courses = append(reports[i].Courses, course)
	}

	for i := range reports {
		totalCredits := 0
		totalPoints := 0.0
		for _, course := range reports[i].Courses {
			totalCredits += course.Credits
			totalPoints += gradePoints[course.Grade] * float64(course.Credits)
		}
		reports[i].CreditsCompleted = totalCredits
		if totalCredits > 0 {
			reports[i].GPA = math.Round(totalPoints/float64(totalCredits)*10) / 10
		}
	}
	return reports
}

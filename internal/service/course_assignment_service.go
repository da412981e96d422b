package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/repository"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

type courseAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.CourseAssignment) error
	FindByID(ctx context.Context, id int64) (*models.CourseAssignment, error)
	Exists(ctx context.Context, instructorID, courseID int64) (bool, error)
	List(ctx context.Context, instructorID int64) ([]models.CourseAssignmentDetail, error)
	Delete(ctx context.Context, id int64) error
}

// CreateCourseAssignmentRequest binds an instructor to a course.
type CreateCourseAssignmentRequest struct {
	InstructorID int64 `json:"instructor_id" validate:"required,min=1"`
	CourseID     int64 `json:"course_id" validate:"required,min=1"`
}

// CourseAssignmentService manages instructor-to-course assignments.
type CourseAssignmentService struct {
	repo      courseAssignmentRepository
	users     roleUserReader
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseAssignmentService constructs CourseAssignmentService.
func NewCourseAssignmentService(repo courseAssignmentRepository, users roleUserReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *CourseAssignmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseAssignmentService{repo: repo, users: users, courses: courses, validator: validate, logger: logger}
}

// Create assigns an instructor to a course after verifying the
// instructor role, the course, and pair uniqueness.
func (s *CourseAssignmentService) Create(ctx context.Context, req CreateCourseAssignmentRequest) (*models.CourseAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if _, err := s.users.FindByIDAndRole(ctx, req.InstructorID, models.RoleInstructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid instructor id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid course id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.Exists(ctx, req.InstructorID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "instructor is already assigned to this course")
	}

	assignment := &models.CourseAssignment{InstructorID: req.InstructorID, CourseID: req.CourseID}
	if err := s.repo.Create(ctx, assignment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "instructor is already assigned to this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// List returns all assignments joined with course and instructor names.
func (s *CourseAssignmentService) List(ctx context.Context) ([]models.CourseAssignmentDetail, error) {
	assignments, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListForInstructor returns the courses assigned to one instructor.
func (s *CourseAssignmentService) ListForInstructor(ctx context.Context, instructorID int64) ([]models.CourseAssignmentDetail, error) {
	assignments, err := s.repo.List(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Delete removes an assignment.
func (s *CourseAssignmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

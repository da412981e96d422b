package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/repository"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Exists(ctx context.Context, userID, courseID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error)
	Update(ctx context.Context, id int64, set map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type roleUserReader interface {
	FindByIDAndRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type assignmentChecker interface {
	Exists(ctx context.Context, instructorID, courseID int64) (bool, error)
}

// CreateEnrollmentRequest describes a new enrollment. UserID is optional
// for students, who always enroll themselves. EnrollmentDate defaults to
// the current day.
type CreateEnrollmentRequest struct {
	UserID         *int64  `json:"user_id" validate:"omitempty,min=1"`
	CourseID       int64   `json:"course_id" validate:"required,min=1"`
	EnrollmentDate *string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateEnrollmentRequest describes a partial enrollment update. Grade
// and status carry separate permission rules.
type UpdateEnrollmentRequest struct {
	Status *models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=enrolled completed dropped"`
	Grade  *string                  `json:"grade" validate:"omitempty,grade"`
}

// EnrollmentService implements enrollment lifecycle with ownership and
// instructor-assignment policy.
type EnrollmentService struct {
	repo        enrollmentRepository
	users       roleUserReader
	courses     courseReader
	assignments assignmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, users roleUserReader, courses courseReader, assignments assignmentChecker, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:        repo,
		users:       users,
		courses:     courses,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
	}
}

// Create enrolls a student in a course. Students may only enroll
// themselves; admins may enroll any student.
func (s *EnrollmentService) Create(ctx context.Context, actor *models.JWTClaims, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	userID := actor.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}
	if !actor.IsAdmin() && userID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only enroll themselves")
	}

	if _, err := s.users.FindByIDAndRole(ctx, userID, models.RoleStudent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid student id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid course id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.Exists(ctx, userID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "student is already enrolled in this course")
	}

	enrollmentDate := time.Now()
	if req.EnrollmentDate != nil {
		enrollmentDate, _ = time.Parse(semesterDateLayout, *req.EnrollmentDate)
	}

	enrollment := &models.Enrollment{
		UserID:         userID,
		CourseID:       req.CourseID,
		EnrollmentDate: enrollmentDate,
		Status:         models.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "student is already enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// List returns enrollments. Admins see every enrollment, everyone else
// only their own.
func (s *EnrollmentService) List(ctx context.Context, actor *models.JWTClaims) ([]models.EnrollmentDetail, error) {
	userID := actor.UserID
	if actor.IsAdmin() {
		userID = 0
	}
	enrollments, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Get returns a single enrollment, restricted to the owner, an
// instructor assigned to the course, or an admin.
func (s *EnrollmentService) Get(ctx context.Context, actor *models.JWTClaims, id int64) (*models.Enrollment, error) {
	enrollment, err := s.findEnrollment(ctx, id)
	if err != nil {
		return nil, err
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
	return enrollment, nil
}

// ListByCourse returns the student roster of a course. Instructors must
// be assigned to the course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID int64) ([]models.CourseRosterEntry, error) {
	if !actor.IsAdmin() {
		assigned, err := s.assignments.Exists(ctx, actor.UserID, courseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
		}
		if !assigned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this course")
		}
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	roster, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course roster")
	}
	return roster, nil
}

// Update applies a partial enrollment update. Grade changes require an
// admin or an instructor assigned to the course; status changes require
// an admin or the owning student.
func (s *EnrollmentService) Update(ctx context.Context, actor *models.JWTClaims, id int64, req UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	enrollment, err := s.findEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if req.Grade != nil {
		if !actor.IsAdmin() {
			assigned, err := s.assignments.Exists(ctx, actor.UserID, enrollment.CourseID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course assignment")
			}
			if !assigned {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this course")
			}
		}
		set["grade"] = *req.Grade
	}
	if req.Status != nil {
		if !actor.IsAdmin() && enrollment.UserID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change another student's enrollment")
		}
		set["status"] = *req.Status
	}

	if len(set) == 0 {
		return nil, appErrors.ErrNoOp
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return s.findEnrollment(ctx, id)
}

// Delete removes an enrollment, restricted to the owning student or an
// admin.
func (s *EnrollmentService) Delete(ctx context.Context, actor *models.JWTClaims, id int64) error {
	enrollment, err := s.findEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && enrollment.UserID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot drop another student's enrollment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}

func (s *EnrollmentService) findEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

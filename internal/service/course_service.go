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

const coursesCacheKey = "catalog:courses"

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]models.CourseDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, set map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type semesterReader interface {
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
}

// CreateCourseRequest describes course creation.
type CreateCourseRequest struct {
	Name         string `json:"course_name" validate:"required"`
	Code         string `json:"course_code" validate:"required"`
	DepartmentID *int64 `json:"department_id" validate:"omitempty,min=1"`
	SemesterID   *int64 `json:"semester_id" validate:"omitempty,min=1"`
	Credits      int    `json:"credits" validate:"required,min=1,max=30"`
}

// UpdateCourseRequest describes a partial course update.
type UpdateCourseRequest struct {
	Name         *string `json:"course_name" validate:"omitempty,min=1"`
	Code         *string `json:"course_code" validate:"omitempty,min=1"`
	DepartmentID *int64  `json:"department_id" validate:"omitempty,min=1"`
	SemesterID   *int64  `json:"semester_id" validate:"omitempty,min=1"`
	Credits      *int    `json:"credits" validate:"omitempty,min=1,max=30"`
}

// CourseService implements course CRUD with code uniqueness and
// department/semester reference checks.
type CourseService struct {
	repo        courseRepository
	departments departmentReader
	semesters   semesterReader
	cache       *repository.CacheRepository
	cacheTTL    time.Duration
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService. The cache and metrics may
// be nil.
func NewCourseService(repo courseRepository, departments departmentReader, semesters semesterReader, cache *repository.CacheRepository, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		departments: departments,
		semesters:   semesters,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Create adds a course after verifying code uniqueness and references.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	taken, err := s.repo.ExistsByCode(ctx, req.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "course code already exists")
	}

	if err := s.checkReferences(ctx, req.DepartmentID, req.SemesterID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Name:         req.Name,
		Code:         req.Code,
		DepartmentID: req.DepartmentID,
		SemesterID:   req.SemesterID,
		Credits:      req.Credits,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "course code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.cache.Invalidate(ctx, coursesCacheKey)
	return course, nil
}

// List returns all courses joined with their department names.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, error) {
	if s.cache != nil {
		var cached []models.CourseDetail
		if err := s.cache.Get(ctx, coursesCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if err := s.cache.Set(ctx, coursesCacheKey, courses, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache courses", zap.Error(err))
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Update applies a partial course update.
func (s *CourseService) Update(ctx context.Context, id int64, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	set := map[string]interface{}{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Code != nil {
		taken, err := s.repo.ExistsByCode(ctx, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code uniqueness")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "course code already exists")
		}
		set["code"] = *req.Code
	}
	if req.DepartmentID != nil {
		set["department_id"] = *req.DepartmentID
	}
	if req.SemesterID != nil {
		set["semester_id"] = *req.SemesterID
	}
	if req.Credits != nil {
		set["credits"] = *req.Credits
	}

	if len(set) == 0 {
		return nil, appErrors.ErrNoOp
	}

	if err := s.checkReferences(ctx, req.DepartmentID, req.SemesterID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "course code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.cache.Invalidate(ctx, coursesCacheKey)
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return updated, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.cache.Invalidate(ctx, coursesCacheKey)
	return nil
}

func (s *CourseService) checkReferences(ctx context.Context, departmentID, semesterID *int64) error {
	if departmentID != nil {
		if _, err := s.departments.FindByID(ctx, *departmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrInvalidReference, "invalid department id")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
	}
	if semesterID != nil {
		if _, err := s.semesters.FindByID(ctx, *semesterID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrInvalidReference, "invalid semester id")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
	}
	return nil
}

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

const (
	semestersCacheKey  = "catalog:semesters"
	semesterDateLayout = "2006-01-02"
)

type semesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	Update(ctx context.Context, id int64, set map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type semesterCourseCounter interface {
	CountBySemester(ctx context.Context, semesterID int64) (int, error)
}

// CreateSemesterRequest describes semester creation.
type CreateSemesterRequest struct {
	Name      string `json:"semester_name" validate:"required,oneof='First Semester' 'Second Semester'"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// UpdateSemesterRequest describes a partial semester update.
type UpdateSemesterRequest struct {
	Name      *string `json:"semester_name" validate:"omitempty,oneof='First Semester' 'Second Semester'"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SemesterService implements semester CRUD with date-order policy and
// a dependency guard on delete.
type SemesterService struct {
	repo      semesterRepository
	courses   semesterCourseCounter
	cache     *repository.CacheRepository
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService. The cache and metrics
// may be nil.
func NewSemesterService(repo semesterRepository, courses semesterCourseCounter, cache *repository.CacheRepository, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, courses: courses, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Create adds a semester after checking the date order.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	start, _ := time.Parse(semesterDateLayout, req.StartDate)
	end, _ := time.Parse(semesterDateLayout, req.EndDate)
	if !end.After(start) {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "end date must be after start date"),
			[]appErrors.FieldError{fieldViolation("end_date", "must be after start_date")},
		)
	}

	semester := &models.Semester{Name: req.Name, StartDate: start, EndDate: end}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}

	s.cache.Invalidate(ctx, semestersCacheKey)
	return semester, nil
}

// List returns all semesters, read through the cache when enabled.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	if s.cache != nil {
		var cached []models.Semester
		if err := s.cache.Get(ctx, semestersCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}

	if err := s.cache.Set(ctx, semestersCacheKey, semesters, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache semesters", zap.Error(err))
	}
	return semesters, nil
}

// Get returns a semester by id.
func (s *SemesterService) Get(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Update applies a partial semester update. The date-order policy is
// re-checked against the merged view of existing and incoming values.
func (s *SemesterService) Update(ctx context.Context, id int64, req UpdateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	set := map[string]interface{}{}
	start := existing.StartDate
	end := existing.EndDate
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.StartDate != nil {
		start, _ = time.Parse(semesterDateLayout, *req.StartDate)
		set["start_date"] = start
	}
	if req.EndDate != nil {
		end, _ = time.Parse(semesterDateLayout, *req.EndDate)
		set["end_date"] = end
	}

	if len(set) == 0 {
		return nil, appErrors.ErrNoOp
	}

	if !end.After(start) {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "end date must be after start date"),
			[]appErrors.FieldError{fieldViolation("end_date", "must be after start_date")},
		)
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}

	s.cache.Invalidate(ctx, semestersCacheKey)
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return updated, nil
}

// Delete removes a semester unless any course still references it.
func (s *SemesterService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	count, err := s.courses.CountBySemester(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count semester courses")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrHasDependents, "semester has assigned courses")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete semester")
	}

	s.cache.Invalidate(ctx, semestersCacheKey)
	return nil
}

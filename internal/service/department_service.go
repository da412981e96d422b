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

const departmentsCacheKey = "catalog:departments"

type departmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
	ExistsByCodeOrName(ctx context.Context, code, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, set map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// CreateDepartmentRequest describes department creation.
type CreateDepartmentRequest struct {
	Name string `json:"department_name" validate:"required"`
	Code string `json:"department_code" validate:"required"`
}

// UpdateDepartmentRequest describes a partial department update.
type UpdateDepartmentRequest struct {
	Name *string `json:"department_name" validate:"omitempty,min=1"`
	Code *string `json:"department_code" validate:"omitempty,min=1"`
}

// DepartmentService implements department CRUD with uniqueness policy.
type DepartmentService struct {
	repo      departmentRepository
	cache     *repository.CacheRepository
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs DepartmentService. The cache and
// metrics may be nil.
func NewDepartmentService(repo departmentRepository, cache *repository.CacheRepository, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Create adds a department, enforcing name and code uniqueness.
func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	taken, err := s.repo.ExistsByCodeOrName(ctx, req.Code, req.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "department name or code already exists")
	}

	department := &models.Department{Name: req.Name, Code: req.Code}
	if err := s.repo.Create(ctx, department); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "department name or code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}

	s.cache.Invalidate(ctx, departmentsCacheKey)
	return department, nil
}

// List returns all departments, read through the cache when enabled.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	if s.cache != nil {
		var cached []models.Department
		if err := s.cache.Get(ctx, departmentsCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}

	if err := s.cache.Set(ctx, departmentsCacheKey, departments, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache departments", zap.Error(err))
	}
	return departments, nil
}

// Get returns a department by id.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// Update applies a partial department update.
func (s *DepartmentService) Update(ctx context.Context, id int64, req UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	set := map[string]interface{}{}
	name := existing.Name
	code := existing.Code
	if req.Name != nil {
		name = *req.Name
		set["name"] = name
	}
	if req.Code != nil {
		code = *req.Code
		set["code"] = code
	}

	if len(set) == 0 {
		return nil, appErrors.ErrNoOp
	}

	taken, err := s.repo.ExistsByCodeOrName(ctx, code, name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "department name or code already exists")
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "department name or code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}

	s.cache.Invalidate(ctx, departmentsCacheKey)
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return updated, nil
}

// Delete removes a department.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}

	s.cache.Invalidate(ctx, departmentsCacheKey)
	return nil
}

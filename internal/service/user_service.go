package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/repository"
	appErrors "github.com/unisms/university-api/pkg/errors"
	"github.com/unisms/university-api/pkg/export"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListRoster(ctx context.Context) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, set map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// UpdateUserRequest describes an admin partial update of a user.
// Only supplied fields are written.
type UpdateUserRequest struct {
	Email        *string          `json:"email" validate:"omitempty,email"`
	Password     *string          `json:"password" validate:"omitempty,min=6"`
	Role         *models.UserRole `json:"role" validate:"omitempty,oneof=student instructor admin"`
	IDNumber     *string          `json:"id_number" validate:"omitempty,idnumber"`
	FirstName    *string          `json:"first_name" validate:"omitempty,min=1"`
	LastName     *string          `json:"last_name" validate:"omitempty,min=1"`
	Phone        *string          `json:"phone" validate:"omitempty,e164"`
	DepartmentID *int64           `json:"department_id" validate:"omitempty,min=1"`
}

// UserService implements user listing and admin mutation.
type UserService struct {
	repo        userRepository
	departments departmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	csv         *export.CSVExporter
}

// NewUserService constructs UserService.
func NewUserService(repo userRepository, departments departmentReader, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, departments: departments, validator: validate, logger: logger, csv: export.NewCSVExporter()}
}

// List returns all users ordered by role then id.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// ListRoster returns students and instructors only.
func (s *UserService) ListRoster(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListRoster(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return users, nil
}

// ExportRoster renders all users as a CSV document.
func (s *UserService) ExportRoster(ctx context.Context) ([]byte, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	table := export.Table{
		Headers: []string{"user_id", "email", "role", "id_number", "first_name", "last_name", "phone"},
	}
	for _, user := range users {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", user.ID),
			user.Email,
			string(user.Role),
			stringOrEmpty(user.IDNumber),
			user.FirstName,
			user.LastName,
			stringOrEmpty(user.Phone),
		})
	}

	data, err := s.csv.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return data, nil
}

// Get returns a user visible to the acting identity: admins may read
// anyone, other roles only themselves.
func (s *UserService) Get(ctx context.Context, actor *models.JWTClaims, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if !actor.IsAdmin() && actor.UserID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	return user, nil
}

// Update applies an admin partial update. Supplying no field fails
// before any write.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	set := map[string]interface{}{}
	if req.Email != nil {
		taken, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already exists")
		}
		set["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		set["password_hash"] = string(hash)
	}
	if req.Role != nil {
		set["role"] = *req.Role
	}
	if req.IDNumber != nil {
		set["id_number"] = *req.IDNumber
	}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid department id")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		set["department_id"] = *req.DepartmentID
	}

	if len(set) == 0 {
		return nil, appErrors.ErrNoOp
	}

	if err := s.repo.Update(ctx, id, set); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email or id number already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return updated, nil
}

// Delete removes a user unconditionally.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

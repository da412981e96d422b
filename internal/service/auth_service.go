package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/repository"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrIDNumber(ctx context.Context, email, idNumber string) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

type departmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// RegisterStudentRequest describes self-service student registration.
type RegisterStudentRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	IDNumber     string  `json:"id_number" validate:"required,idnumber"`
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	Phone        *string `json:"phone" validate:"omitempty,e164"`
	DepartmentID *int64  `json:"department_id" validate:"omitempty,min=1"`
}

// RegisterInstructorRequest describes admin-driven instructor registration.
type RegisterInstructorRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	Phone        *string `json:"phone" validate:"omitempty,e164"`
	DepartmentID int64   `json:"department_id" validate:"required,min=1"`
}

// RegisterAdminRequest describes admin-driven admin registration.
type RegisterAdminRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// RegistrationResult acknowledges a newly registered user.
type RegistrationResult struct {
	UserID   int64  `json:"user_id"`
	IDNumber string `json:"id_number,omitempty"`
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	users       authUserRepository
	departments departmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, departments departmentReader, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, departments: departments, validator: validate, logger: logger, config: config}
}

// RegisterStudent creates a student account. Email and id number must
// both be unused.
func (s *AuthService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid department id")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
	}

	taken, err := s.users.ExistsByEmailOrIDNumber(ctx, req.Email, req.IDNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "email or id number already exists")
	}

	user := &models.User{
		Email:        req.Email,
		Role:         models.RoleStudent,
		IDNumber:     &req.IDNumber,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DepartmentID: req.DepartmentID,
	}
	if err := s.createUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	s.logger.Info("student registered", zap.Int64("user_id", user.ID))
	return &RegistrationResult{UserID: user.ID, IDNumber: req.IDNumber}, nil
}

// RegisterInstructor creates an instructor account.
func (s *AuthService) RegisterInstructor(ctx context.Context, req RegisterInstructorRequest) (*RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "invalid department id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	if err := s.checkEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Role:         models.RoleInstructor,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DepartmentID: &req.DepartmentID,
	}
	if err := s.createUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	s.logger.Info("instructor registered", zap.Int64("user_id", user.ID))
	return &RegistrationResult{UserID: user.ID}, nil
}

// RegisterAdmin creates an admin account.
func (s *AuthService) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	if err := s.checkEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     req.Email,
		Role:      models.RoleAdmin,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.createUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	s.logger.Info("admin registered", zap.Int64("user_id", user.ID))
	return &RegistrationResult{UserID: user.ID}, nil
}

// Login authenticates credentials and issues a signed token. Unknown
// email and mismatched password return the same error, so accounts
// cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{Token: token, Role: user.Role}, nil
}

// VerifyToken parses and validates an access token returning the claims.
func (s *AuthService) VerifyToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) checkEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.ExistsByEmail(ctx, email, 0)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrDuplicate, "email already exists")
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicate, "email or id number already exists")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	expiration := s.config.Expiration
	if expiration <= 0 {
		expiration = 7 * 24 * time.Hour
	}
	claims := &models.JWTClaims{
		UserID:    user.ID,
		Role:      user.Role,
		FirstName: user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

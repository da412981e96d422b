package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

func TestUserGetVisibility(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	user, err := svc.Get(context.Background(), studentClaims(7), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	_, err = svc.Get(context.Background(), studentClaims(8), 7)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	user, err = svc.Get(context.Background(), adminClaims(1), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestUserGetMissing(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), newFakeDepartmentStore(), nil, nil)

	_, err := svc.Get(context.Background(), adminClaims(1), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserUpdateWithoutFields(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	_, err := svc.Update(context.Background(), 7, UpdateUserRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOp.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.updates)
}

func TestUserUpdateDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	users.emailTaken = true
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	_, err := svc.Update(context.Background(), 7, UpdateUserRequest{Email: strPtr("taken@example.com")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.updates)
}

func TestUserUpdateHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	_, err := svc.Update(context.Background(), 7, UpdateUserRequest{Password: strPtr("new-secret")})
	require.NoError(t, err)

	set := users.updates[7]
	require.Contains(t, set, "password_hash")
	hash, ok := set["password_hash"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "new-secret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-secret")))
}

func TestUserUpdateUnknownDepartment(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	_, err := svc.Update(context.Background(), 7, UpdateUserRequest{DepartmentID: int64Ptr(42)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidReference.Code, appErrors.FromError(err).Code)
}

func TestUserExportRoster(t *testing.T) {
	users := newFakeUserStore()
	users.all = []models.User{
		{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, FirstName: "Sara", LastName: "Tadesse"},
		{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent, IDNumber: strPtr("ETS1234/20"), FirstName: "Abebe", LastName: "Bekele"},
	}
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	data, err := svc.ExportRoster(context.Background())
	require.NoError(t, err)

	csv := string(data)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "user_id,email,role,id_number,first_name,last_name,phone", strings.TrimSpace(lines[0]))
	assert.Contains(t, csv, "7,abebe@example.com,student,ETS1234/20,Abebe,Bekele,")
}

func TestUserDelete(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: 7, Email: "abebe@example.com", Role: models.RoleStudent})
	svc := NewUserService(users, newFakeDepartmentStore(), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, []int64{7}, users.deleted)
}

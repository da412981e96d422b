package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/repository"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

func newTestDepartmentService(repo *fakeDepartmentStore) *DepartmentService {
	return NewDepartmentService(repo, nil, time.Minute, nil, nil, nil)
}

func TestDepartmentCreate(t *testing.T) {
	repo := newFakeDepartmentStore()
	svc := newTestDepartmentService(repo)

	department, err := svc.Create(context.Background(), CreateDepartmentRequest{
		Name: "Software Engineering",
		Code: "SWE",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), department.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "SWE", repo.created[0].Code)
}

func TestDepartmentCreateDuplicate(t *testing.T) {
	repo := newFakeDepartmentStore()
	repo.taken = true
	svc := newTestDepartmentService(repo)

	_, err := svc.Create(context.Background(), CreateDepartmentRequest{
		Name: "Software Engineering",
		Code: "SWE",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestDepartmentUpdateWithoutFields(t *testing.T) {
	repo := newFakeDepartmentStore()
	repo.add(&models.Department{ID: 3, Name: "Software Engineering", Code: "SWE"})
	svc := newTestDepartmentService(repo)

	_, err := svc.Update(context.Background(), 3, UpdateDepartmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoOp.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updates)
}

func TestDepartmentUpdateChecksMergedUniqueness(t *testing.T) {
	repo := newFakeDepartmentStore()
	repo.add(&models.Department{ID: 3, Name: "Software Engineering", Code: "SWE"})
	svc := newTestDepartmentService(repo)

	// Only the code changes; the check must still cover the kept name.
	_, err := svc.Update(context.Background(), 3, UpdateDepartmentRequest{Code: strPtr("SW")})
	require.NoError(t, err)
	assert.Equal(t, "SW", repo.lastExistsCode)
	assert.Equal(t, "Software Engineering", repo.lastExistsName)
	assert.Equal(t, int64(3), repo.lastExistsExcl)
	assert.Equal(t, map[string]interface{}{"code": "SW"}, repo.updates[3])
}

func TestDepartmentUpdateMissing(t *testing.T) {
	svc := newTestDepartmentService(newFakeDepartmentStore())

	_, err := svc.Update(context.Background(), 9, UpdateDepartmentRequest{Name: strPtr("Civil Engineering")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDepartmentListRecordsCacheLookups(t *testing.T) {
	repo := newFakeDepartmentStore()
	repo.all = []models.Department{{ID: 1, Name: "Software Engineering", Code: "SWE"}}
	metrics := NewMetricsService()
	// Repository wrapper without a Redis client: every Get is a miss.
	svc := NewDepartmentService(repo, repository.NewCacheRepository(nil, nil), time.Minute, metrics, nil, nil)

	for i := 0; i < 2; i++ {
		departments, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, departments, 1)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.cacheHits))
}

func TestDepartmentListSkipsMetricsWithoutCache(t *testing.T) {
	repo := newFakeDepartmentStore()
	metrics := NewMetricsService()
	svc := NewDepartmentService(repo, nil, time.Minute, metrics, nil, nil)

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.cacheHits))
}

func TestDepartmentDelete(t *testing.T) {
	repo := newFakeDepartmentStore()
	repo.add(&models.Department{ID: 3, Name: "Software Engineering", Code: "SWE"})
	svc := newTestDepartmentService(repo)

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []int64{3}, repo.deleted)

	err := svc.Delete(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

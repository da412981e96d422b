package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unisms/university-api/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestJSONWrapsDataInEnvelope(t *testing.T) {
	c, rec := newTestContext(t)

	JSON(c, http.StatusOK, map[string]string{"name": "SWE"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"name":"SWE"}}`, rec.Body.String())
}

func TestMessageAcknowledgesWithOK(t *testing.T) {
	c, rec := newTestContext(t)

	Message(c, "department deleted")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"message":"department deleted"}}`, rec.Body.String())
}

func TestErrorUsesStatusFromError(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, appErrors.Clone(appErrors.ErrNotFound, "department not found"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"NOT_FOUND"`)
	assert.Contains(t, rec.Body.String(), "department not found")
}

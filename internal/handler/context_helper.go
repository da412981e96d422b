package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unisms/university-api/internal/middleware"
	"github.com/unisms/university-api/internal/models"
	appErrors "github.com/unisms/university-api/pkg/errors"
)

// claimsFromContext extracts the authenticated identity set by the JWT
// middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, error) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, appErrors.ErrUnauthorized
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

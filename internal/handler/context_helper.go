package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hadirku/hadirku-api/internal/middleware"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireSelfOrAdmin lets admins act on any teacher while teacher tokens may
// only act on their own record.
func requireSelfOrAdmin(c *gin.Context, teacherID string) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleAdmin || claims.UserID == teacherID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "cannot act on another teacher's record")
}

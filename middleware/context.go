package middleware

import (
	"context"

	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
)

type userKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey{}).(*models.User)
	return user, ok && user != nil
}

// CurrentUser returns the authenticated caller. Only valid behind AuthRequired.
func CurrentUser(c *gin.Context) *models.User {
	user, _ := UserFromContext(c.Request.Context())
	return user
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	if user := CurrentUser(c); user != nil {
		return user.Role
	}
	return ""
}

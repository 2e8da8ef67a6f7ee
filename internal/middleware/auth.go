package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/internal/utils"
	"github.com/luneclub/lune/backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthRequired checks the bearer JWT and stores the caller's identity in
// the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil || !models.Role(claims.Role).Valid() {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, models.Role(claims.Role))

		c.Next()
	}
}

// RoleRequired lets through only the listed roles. Other callers get 401,
// the same answer as a missing token.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Unauthorized(c, "insufficient role for this operation")
		c.Abort()
	}
}

// AdminRequired is RoleRequired(ADMIN).
func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin)
}

func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

func GetRole(c *gin.Context) models.Role {
	if role, exists := c.Get(ContextRole); exists {
		if v, ok := role.(models.Role); ok {
			return v
		}
	}
	return ""
}

// GetActor builds the service-layer caller from the context. Anonymous
// requests yield the zero Actor.
func GetActor(c *gin.Context) services.Actor {
	return services.Actor{UserID: GetUserID(c), Role: GetRole(c)}
}

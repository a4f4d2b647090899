package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reverse-market/internal/models"
)

const (
	ctxUserID   = "user_id"
	ctxUserType = "user_type"
)

// AuthMiddleware validates JWT tokens and protects routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Authorization header required",
			})
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid authorization header format. Expected: Bearer <token>",
			})
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or expired token",
			})
			return
		}

		SetIdentity(c, claims.UserID, claims.UserType)
		c.Next()
	}
}

// SetIdentity stores the caller in the request context
func SetIdentity(c *gin.Context, userID uint, userType models.UserType) {
	c.Set(ctxUserID, userID)
	c.Set(ctxUserType, userType)
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok
}

// GetUserType retrieves the user type from the context
func GetUserType(c *gin.Context) (models.UserType, bool) {
	v, exists := c.Get(ctxUserType)
	if !exists {
		return 0, false
	}

	t, ok := v.(models.UserType)
	return t, ok
}

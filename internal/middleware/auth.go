package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/auth"
)

const (
	// UserIDKey is the gin context key for the authenticated user ID.
	UserIDKey = "user_id"
	// EmailKey is the gin context key for the authenticated user's email.
	EmailKey = "email"
)

// GetUserID extracts the authenticated user ID from the request context.
// Returns empty string if not found.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Value(UserIDKey).(string)
	return userID
}

// RequireAuth validates the Bearer token and stores the user ID and email
// in the request context. Requests without a valid token are rejected
// with 401.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be 'Bearer <token>'"})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

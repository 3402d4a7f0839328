package middleware

import (
	"context"
	"net/http"
	"strings"

	"notevault/model"
	"notevault/services"

	"github.com/gin-gonic/gin"
)

// AccountResolver confirms a token's identity still maps to a real
// account.
type AccountResolver interface {
	FindUserByID(ctx context.Context, userID string) (*model.User, error)
}

// AuthMiddleware is the authorization gate. It accepts a bearer token
// from the Authorization header or the session cookie, verifies
// signature and expiry, rejects logged-out tokens, confirms the account
// still exists, and attaches the identity to the request context.
func AuthMiddleware(users AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No token provided"})
			c.Abort()
			return
		}

		if services.IsTokenBlacklisted(c.Request.Context(), tokenString) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			c.Abort()
			return
		}

		claims, err := services.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			c.Abort()
			return
		}

		user, err := users.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("token", tokenString)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

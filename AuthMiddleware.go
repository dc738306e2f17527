package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			jsonError(c, http.StatusUnauthorized, "Missing Authorization header")
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			jsonError(c, http.StatusUnauthorized, "Invalid token format")
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "details": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token is
// sent and lets every request through. Body fields still identify the
// requester when no token is present.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := ParseToken(tokenString); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("email", claims.Email)
			}
		}
		c.Next()
	}
}

// getAuthFromContext returns the identity set by one of the middlewares.
func getAuthFromContext(c *gin.Context) (userID, email string, ok bool) {
	userID = c.GetString("user_id")
	email = c.GetString("email")
	return userID, email, userID != ""
}

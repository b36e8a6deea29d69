package middleware

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/auth"
)

// RequireUser validates the Firebase ID token and stores the caller identity
// in the request context. Requests without a valid token are rejected.
func RequireUser(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		auth.SetIdentityFromToken(c, decoded)
		c.Next()
	}
}

// OptionalUser extracts the caller identity when a valid token is present
// and lets anonymous requests through untouched. Used on read endpoints and
// the assistant, which serve unauthenticated callers with reduced context.
func OptionalUser(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if decoded, err := authClient.VerifyIDToken(c.Request.Context(), token); err == nil {
				auth.SetIdentityFromToken(c, decoded)
			}
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}

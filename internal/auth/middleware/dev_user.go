package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/auth"
)

// DevRequireUser is the local-development stand-in for RequireUser when no
// Firebase project is configured: the caller identity comes straight from
// the X-User-Id / X-User-Name / X-User-Email headers, unverified.
func DevRequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-Id")
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing X-User-Id header"})
			c.Abort()
			return
		}

		auth.SetIdentity(c, &auth.Identity{
			UID:         uid,
			DisplayName: c.GetHeader("X-User-Name"),
			Email:       c.GetHeader("X-User-Email"),
		})
		c.Next()
	}
}

// DevOptionalUser is the header-based counterpart of OptionalUser.
func DevOptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader("X-User-Id"); uid != "" {
			auth.SetIdentity(c, &auth.Identity{
				UID:         uid,
				DisplayName: c.GetHeader("X-User-Name"),
				Email:       c.GetHeader("X-User-Email"),
			})
		}
		c.Next()
	}
}

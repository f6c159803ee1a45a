// README: Auth middleware; trusts the gateway-injected user header.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/types"
)

const userIDKey = "userID"

// Auth requires the X-User-ID header set by the edge gateway after token
// verification. Requests without it are rejected.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-ID")
		if uid == "" || !validUserID(uid) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid user id"})
			return
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// UserID returns the authenticated user set by Auth.
func UserID(c *gin.Context) types.ID {
	return types.ID(c.GetString(userIDKey))
}

// validUserID ensures IDs are alphanumeric and at most 64 chars.
func validUserID(v string) bool {
	if len(v) > 64 {
		return false
	}
	for _, r := range v {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

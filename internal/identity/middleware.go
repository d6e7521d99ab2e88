package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "identity.user_id"

// Middleware resolves the caller to a user id and stores it on the
// request context. Requests with an unresolvable credential never
// reach the handlers behind it.
func Middleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}

		userID, err := resolver.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown caller"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the resolved user id for the request, or the empty
// string when the identity middleware did not run.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

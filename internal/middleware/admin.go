package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware gates the operational endpoints (user listing, bulk
// recompute) behind a static allow-list from ADMIN_USERS.
type AdminMiddleware struct {
	adminUsers map[string]bool
}

func NewAdminMiddleware(adminUsers []string) *AdminMiddleware {
	allowed := make(map[string]bool, len(adminUsers))
	for _, u := range adminUsers {
		allowed[u] = true
	}
	return &AdminMiddleware{adminUsers: allowed}
}

func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := GetUsername(c)
		if username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !m.adminUsers[username] {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
)

// RequireRoles chặn request nếu role trong token không nằm trong danh sách cho phép.
// Phải chạy sau Auth middleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if _, ok := allowed[role]; !ok {
			response.Error(c, http.StatusForbidden, "you do not have permission to access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}

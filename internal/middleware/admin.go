package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
)

// RequireRoot allows only tokens carrying the root claim
func RequireRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsRoot(c) {
			common.V2ErrorResponse(c, http.StatusForbidden, "root permission required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

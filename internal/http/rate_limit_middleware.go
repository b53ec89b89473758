package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrackerhub/internal/service"
)

// RateLimitMiddleware limita requests a endpoints de autenticacion por
// path e IP del cliente.
func RateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many attempts. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}

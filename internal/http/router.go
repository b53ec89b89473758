package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobtrackerhub/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	appH *ApplicationHandler,
	tokens *service.TokenService,
	authLimiter service.RateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.Use(RateLimitMiddleware(authLimiter))
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/verify-security", authH.VerifySecurityAnswer)
	auth.POST("/reset-password", authH.ResetPassword)

	apps := r.Group("/applications")
	apps.Use(SessionAuthMiddleware(tokens))
	apps.GET("", appH.List)
	apps.POST("", appH.Create)
	apps.PUT("/:id", appH.Update)
	apps.DELETE("/:id", appH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

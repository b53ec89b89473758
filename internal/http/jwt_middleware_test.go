package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobtrackerhub/internal/domain"
	"jobtrackerhub/internal/service"
)

func TestSessionAuthMiddleware_AllowsValidSessionToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("secret", zap.NewNop())
	user := domain.User{ID: "u1", Email: "user@example.com", CreatedAt: time.Now().UTC()}
	token, err := tokens.IssueSession(user)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || claims.UserID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("secret", zap.NewNop())

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_RejectsResetToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("secret", zap.NewNop())
	token, err := tokens.IssueResetToken("u1")
	if err != nil {
		t.Fatalf("issue reset token: %v", err)
	}

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("a reset token must not open protected routes, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_RejectsGarbageToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("secret", zap.NewNop())

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

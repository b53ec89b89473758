package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobtrackerhub/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	tokens   *service.TokenService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		tokens:   tokens,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email            string `json:"email" binding:"required,email"`
		Password         string `json:"password" binding:"required,min=8"`
		Name             string `json:"name" binding:"required"`
		SecurityQuestion string `json:"security_question"`
		SecurityAnswer   string `json:"security_answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.authServ.Register(c.Request.Context(), service.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"message": "Email already exists"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		}
		return
	}

	token, err := h.tokens.IssueSession(user)
	if err != nil {
		h.logger.Error("session token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": invalidCredentialsMessage})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	token, err := h.tokens.IssueSession(user)
	if err != nil {
		h.logger.Error("session token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Mismo mensaje para email desconocido y password incorrecto.
const invalidCredentialsMessage = "Invalid email or password"

const resetSentMessage = "If an account exists, a reset link has been sent"

// ForgotPassword maneja POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	if err := h.authServ.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many reset attempts. Please try again later."})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		default:
			h.logger.Error("password reset request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process password reset request"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resetSentMessage})
}

// VerifySecurityAnswer maneja POST /auth/verify-security.
func (h *AuthHandler) VerifySecurityAnswer(c *gin.Context) {
	var req struct {
		Email          string `json:"email" binding:"required,email"`
		SecurityAnswer string `json:"security_answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify security request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	resetToken, err := h.authServ.VerifySecurityAnswer(c.Request.Context(), req.Email, req.SecurityAnswer)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or security answer"})
			return
		}
		h.logger.Error("security verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Security verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resetToken": resetToken})
}

// ResetPassword maneja POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset token"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		default:
			h.logger.Error("password reset failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reset password"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jobtrackerhub/internal/domain"
	"jobtrackerhub/internal/email"
	"jobtrackerhub/internal/repository"
)

// AuthService coordina registro, login y el flujo de reset de password.
type AuthService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	tokens       *TokenService
	emailSender  email.Sender
	resetLimiter RateLimiter
	appURL       string
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
	ErrRateLimited        = errors.New("rate limited")
)

const minPasswordLength = 8

func NewAuthService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, emailSender email.Sender, resetLimiter RateLimiter, appURL string) *AuthService {
	if resetLimiter == nil {
		resetLimiter = NewFixedWindowRateLimiter(defaultRateWindow, defaultRateMax, logger)
	}
	return &AuthService{
		logger:       logger,
		users:        users,
		tokens:       tokens,
		emailSender:  emailSender,
		resetLimiter: resetLimiter,
		appURL:       strings.TrimRight(appURL, "/"),
	}
}

type RegisterInput struct {
	Email            string
	Password         string
	Name             string
	SecurityQuestion string
	SecurityAnswer   string
}

// Register crea un usuario nuevo con password hasheado. La respuesta de
// seguridad se trata como un secreto y tambien se hashea.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if !isValidEmail(emailAddr) || len(input.Password) < minPasswordLength || name == "" {
		return domain.User{}, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         name,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}

	if question := strings.TrimSpace(input.SecurityQuestion); question != "" {
		answer := normalizeAnswer(input.SecurityAnswer)
		if answer == "" {
			return domain.User{}, ErrInvalidInput
		}
		answerHash, err := bcrypt.GenerateFromPassword([]byte(answer), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.SecurityQuestion = question
		user.SecurityAnswerHash = string(answerHash)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// Login autentica por email y password. Email desconocido y password
// incorrecto devuelven el mismo error para no filtrar cuentas.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// VerifySecurityAnswer implementa la variante de recuperacion por pregunta
// de seguridad: devuelve un reset token directamente al caller. Email
// desconocido y respuesta incorrecta son indistinguibles.
func (s *AuthService) VerifySecurityAnswer(ctx context.Context, emailAddr, answer string) (string, error) {
	emailAddr = normalizeEmail(emailAddr)
	answer = normalizeAnswer(answer)
	if emailAddr == "" || answer == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if user.SecurityAnswerHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SecurityAnswerHash), []byte(answer)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueAndPersistResetToken(ctx, user.ID)
}

// ForgotPassword implementa la variante por link de email. Responde igual
// exista o no la cuenta; solo el rate limit se reporta al caller.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if !isValidEmail(emailAddr) {
		return ErrInvalidInput
	}

	if s.resetLimiter != nil && !s.resetLimiter.Allow("reset:"+emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Respuesta generica para prevenir enumeracion de emails.
			return nil
		}
		return err
	}

	token, err := s.issueAndPersistResetToken(ctx, user.ID)
	if err != nil {
		return err
	}

	// La falla de envio no se propaga: un 500 solo para cuentas existentes
	// delataria que el email esta registrado.
	resetURL := s.appURL + "/reset-password?token=" + token
	expiresAt := time.Now().UTC().Add(resetTTL)
	if s.emailSender == nil {
		if s.logger != nil {
			s.logger.Error("email sender not configured", zap.String("user_id", user.ID))
		}
		return nil
	}
	if err := s.emailSender.SendPasswordReset(ctx, emailAddr, user.Name, resetURL, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Error("send reset email failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}
	return nil
}

// ResetPassword consume un reset token y fija el nuevo password. El token
// se verifica por firma y ademas contra la fila del usuario, que se limpia
// en el mismo UPDATE: un token consumido no puede reutilizarse.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrInvalidInput
	}
	claims, err := s.tokens.ParseResetToken(token)
	if err != nil {
		return ErrResetTokenInvalid
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.ConsumeResetToken(ctx, claims.UserID, token, string(passwordHash)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("password reset successful", zap.String("user_id", claims.UserID))
	}
	return nil
}

func (s *AuthService) issueAndPersistResetToken(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.IssueResetToken(userID)
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().UTC().Add(resetTTL)
	if err := s.users.UpdateResetToken(ctx, userID, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

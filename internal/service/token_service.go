package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"jobtrackerhub/internal/domain"
)

// TokenService emite y valida tokens JWT de sesion y de reset de password.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	issuer     string
	logger     *zap.Logger
}

type Claims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

const (
	tokenTypeSession = "session"
	tokenTypeReset   = "reset"

	sessionTTL = 24 * time.Hour
	resetTTL   = time.Hour
)

func NewTokenService(secret string, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		issuer:     "jobtrackerhub",
		logger:     logger,
	}
}

// IssueSession firma un token de sesion con sub = user.ID y 24h de vida.
func (s *TokenService) IssueSession(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	return s.sign(user.ID, user.Email, tokenTypeSession, s.sessionTTL)
}

// IssueResetToken firma un token de reset con 1h de vida y registra la emision.
func (s *TokenService) IssueResetToken(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	token, err := s.sign(userID, "", tokenTypeReset, s.resetTTL)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("reset token generation failed", zap.Error(err), zap.String("user_id", userID))
		}
		return "", err
	}
	if s.logger != nil {
		s.logger.Info("reset token generated", zap.String("user_id", userID))
	}
	return token, nil
}

// ParseSession valida un token de sesion y devuelve sus claims.
func (s *TokenService) ParseSession(token string) (Claims, error) {
	return s.parseTyped(token, tokenTypeSession)
}

// ParseResetToken valida un token de reset y devuelve sus claims.
func (s *TokenService) ParseResetToken(token string) (Claims, error) {
	return s.parseTyped(token, tokenTypeReset)
}

func (s *TokenService) sign(userID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parseTyped(tokenString, tokenType string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	claims, err := s.parse(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenType {
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}

package service

import (
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService guards the read-only admin API: one configured admin user,
// bcrypt-hashed password, short-lived HS256 access tokens.
type AuthService struct {
	adminUser    string
	passwordHash string
	jwtSecret    []byte
	accessTTL    time.Duration
	logger       *zap.Logger
}

// NewAuthService creates the auth service. passwordHash is the bcrypt
// hash of the admin password; an empty hash disables login entirely.
func NewAuthService(adminUser, passwordHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		adminUser:    adminUser,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		logger:       logger,
	}
}

// Login validates the credentials and returns a signed access token.
func (s *AuthService) Login(user, password string) (string, error) {
	if s.passwordHash == "" {
		s.logger.Warn("admin login attempted but no password hash configured")
		return "", &domain.ErrUnauthorized{Message: "admin login disabled"}
	}
	if user != s.adminUser {
		return "", &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.logger.Warn("admin login failed", zap.String("user", user))
		return "", &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		Issuer:    "pedidos",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	s.logger.Info("admin logged in", zap.String("user", user))
	return signed, nil
}

// ValidateAccessToken parses and verifies a token, returning its subject.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &domain.ErrUnauthorized{Message: "unexpected signing method"}
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", &domain.ErrUnauthorized{Message: "invalid token claims"}
	}
	return claims.Subject, nil
}

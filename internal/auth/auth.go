package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotConfigured      = errors.New("operator authentication is not configured")
)

const tokenTTL = 24 * time.Hour

// Service issues and validates control-plane tokens. There is a single
// operator identity: a password checked against a bcrypt hash from config.
type Service struct {
	secret       []byte
	passwordHash []byte
}

// NewService creates an auth Service. Both values come from configuration;
// either being empty disables logins (the control plane then fails closed).
func NewService(jwtSecret, passwordHash string) *Service {
	return &Service{secret: []byte(jwtSecret), passwordHash: []byte(passwordHash)}
}

// HashPassword produces a bcrypt hash suitable for configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies the operator password and returns a signed token.
func (s *Service) Login(password string) (string, error) {
	if len(s.secret) == 0 || len(s.passwordHash) == 0 {
		return "", ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token string.
func (s *Service) Validate(tokenString string) error {
	if len(s.secret) == 0 {
		return ErrNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

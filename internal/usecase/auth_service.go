package usecase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and verifies the HS256 service tokens internal RPC
// callers present on /api routes. Webhooks authenticate by provider
// signature, never by JWT.
type AuthService struct {
	JWTSecret string
}

func (s *AuthService) IssueServiceToken(callerID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"caller_id": callerID,
		"exp":       time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}

func (s *AuthService) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized("invalid claims")
	}
	caller, _ := m["caller_id"].(string)
	if caller == "" {
		return "", ErrUnauthorized("caller missing")
	}
	return caller, nil
}

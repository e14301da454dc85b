package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid_session")

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// TokenService mints and verifies the HS256 session tokens handed out on
// registration and login.
type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issue signs a session token for the given account.
func (s *TokenService) Issue(accountID string) (string, error) {
	ttl := s.TTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns the account ID it was issued
// for. Expired, malformed, or foreign tokens all map to ErrInvalidSession.
func (s *TokenService) Parse(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}

package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetimes for each token type issued by the API.
const (
	ActivationTokenTTL = time.Hour
	AccessTokenTTL     = 15 * time.Minute
	RefreshTokenTTL    = 24 * time.Hour
	ResetTokenTTL      = time.Hour
)

// ErrInvalidOrExpiredToken is returned by Verify for any token that does not
// check out: bad signature, wrong algorithm, expired, or malformed. Callers
// treat it as terminal for the request.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

// Service issues and verifies signed tokens for a single token type.
// Each token type (activation, access, refresh, reset) gets its own Service
// with a distinct secret and TTL.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service signing with the given secret
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token carrying the user ID as subject and the service TTL as
// expiry. The random token ID makes every issued token distinct, so replacing
// a stored token always invalidates the previous one.
func (s *Service) Issue(userID string) (string, error) {
	id := make([]byte, 8)
	if _, err := rand.Read(id); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        hex.EncodeToString(id),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject (user ID).
// Any failure collapses into ErrInvalidOrExpiredToken.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return "", ErrInvalidOrExpiredToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidOrExpiredToken
	}

	return claims.Subject, nil
}

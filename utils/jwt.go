package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token types. Admin tokens and download tokens are never interchangeable.
const (
	TokenTypeAdmin    = "admin"
	TokenTypeDownload = "download"
)

// ErrInvalidToken covers bad signatures, expiry, malformed payloads and
// type mismatches.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type string `json:"typ"`
	JTI  string `json:"jti,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies typed, expiring credentials.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec builds a codec around the shared HS256 secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue creates a signed token of the given type and subject. jti is
// optional and carries the redemption identifier for share downloads.
func (c *TokenCodec) Issue(tokenType, subject string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: tokenType,
		JTI:  jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token, checking signature, expiry and
// payload shape.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Type == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AssertType fails when the token carries the wrong type tag.
func (c *TokenCodec) AssertType(claims *Claims, expected string) error {
	if claims.Type != expected {
		return ErrInvalidToken
	}
	return nil
}

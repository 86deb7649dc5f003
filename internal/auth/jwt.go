// Package auth verifies owner session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
)

// MinSecretLength is the shortest accepted HMAC secret in bytes.
const MinSecretLength = 32

var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)

// Claims represents the JWT claims of an owner session. The subject is the
// caller's principal.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewJWTManager creates a manager for HS256 tokens. An empty issuer disables
// the issuer check.
func NewJWTManager(secret, issuer string, expiry time.Duration) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, expiry: expiry}, nil
}

// GenerateToken signs a session token for principal. Tokens are normally
// issued by the identity layer; this is used by tooling and tests.
func (m *JWTManager) GenerateToken(principal, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token, returning the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("session token has no subject")
	}
	return claims, nil
}

// Validator adapts the manager to the middleware's TokenValidator. The
// identity check rejects subjects that could never own a catalog.
func (m *JWTManager) Validator(validIdentity func(string) error) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		if validIdentity != nil {
			if err := validIdentity(claims.Subject); err != nil {
				return nil, fmt.Errorf("session subject: %w", err)
			}
		}
		return &middleware.Claims{Principal: claims.Subject, Role: claims.Role}, nil
	}
}

// Package auth issues and validates the JWT bearer tokens protecting the
// API. Users are seeded from configuration; roles gate the admin endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ratesvc/internal/config"
)

const (
	// RoleAdmin grants access to operational endpoints.
	RoleAdmin = "admin"
	// RoleUser grants access to the rate endpoints.
	RoleUser = "user"
)

// ErrInvalidCredentials indicates an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidToken indicates a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by every issued token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type user struct {
	password string
	role     string
}

// TokenIssuer authenticates seed users and signs HS256 tokens for them.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	users    map[string]user
	now      func() time.Time
}

// NewTokenIssuer builds a TokenIssuer from the auth configuration.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	users := make(map[string]user, 2)
	if cfg.AdminUser != "" {
		users[cfg.AdminUser] = user{password: cfg.AdminPassword, role: RoleAdmin}
	}
	if cfg.ClientUser != "" {
		users[cfg.ClientUser] = user{password: cfg.ClientPassword, role: RoleUser}
	}
	return &TokenIssuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		tokenTTL: time.Duration(cfg.TokenTTLMin) * time.Minute,
		users:    users,
		now:      time.Now,
	}
}

// Authenticate verifies the credentials and returns a signed token plus its
// expiry time.
func (t *TokenIssuer) Authenticate(username, password string) (string, time.Time, error) {
	u, ok := t.users[username]
	if !ok || u.password != password {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return t.Issue(username, u.role)
}

// Issue signs a token for the given subject and role.
func (t *TokenIssuer) Issue(subject, role string) (string, time.Time, error) {
	now := t.now().UTC()
	expiresAt := now.Add(t.tokenTTL)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token, returning its claims.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

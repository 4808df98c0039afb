package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// RoleAdmin is the role required to create or change system script steps
const RoleAdmin = "admin"

// ErrForbidden is returned when the caller lacks administrator permission
var ErrForbidden = errors.New("administrator permission required")

// Authorizer answers permission questions for the current caller
type Authorizer interface {
	HasAdminPermission(ctx context.Context) bool
}

// CheckAdminPermission returns ErrForbidden unless the caller is an administrator
func CheckAdminPermission(ctx context.Context, a Authorizer) error {
	if a == nil || !a.HasAdminPermission(ctx) {
		return ErrForbidden
	}
	return nil
}

// Static is an Authorizer with a fixed answer
type Static bool

func (s Static) HasAdminPermission(ctx context.Context) bool {
	return bool(s)
}

// Claims are the JWT claims carried by an operator token
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenAuthorizer authorizes the holder of an HS256 operator token
type TokenAuthorizer struct {
	secret []byte
	token  string
}

// NewTokenAuthorizer creates an authorizer for the given token
func NewTokenAuthorizer(secret []byte, token string) *TokenAuthorizer {
	return &TokenAuthorizer{secret: append([]byte(nil), secret...), token: token}
}

// HasAdminPermission reports whether the token is valid and grants the admin role
func (a *TokenAuthorizer) HasAdminPermission(ctx context.Context) bool {
	claims, err := a.Claims()
	if err != nil {
		return false
	}
	return slices.Contains(claims.Roles, RoleAdmin)
}

// Claims validates the token and returns its claims
func (a *TokenAuthorizer) Claims() (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("token secret is not configured")
	}
	if a.token == "" {
		return nil, errors.New("token is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(a.token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// IssueToken signs an operator token
func IssueToken(secret []byte, subject string, roles []string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token secret is not configured")
	}

	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

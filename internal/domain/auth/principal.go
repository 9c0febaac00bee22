package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrTokenRequired = errors.New("auth: token is required")
	ErrUnauthorized  = errors.New("auth: authentication required")
	ErrForbidden     = errors.New("auth: insufficient permissions")
)

// RoleAdmin gates catalog management.
const RoleAdmin = "admin"

// Principal is the caller identified by the bearer token.
type Principal struct {
	UserID string
	Name   string
	Roles  []string
	Token  string
}

func (p Principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireRole checks the principal carried by ctx. An empty role only
// requires authentication.
func RequireRole(ctx context.Context, role string) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || !p.Authenticated() {
		return Principal{}, ErrUnauthorized
	}
	if role != "" && !p.HasRole(role) {
		return Principal{}, ErrForbidden
	}
	return p, nil
}

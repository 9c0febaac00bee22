package middleware

import (
	"context"
	"fmt"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(ctx context.Context, message any) error

func (f AuthorizerFunc) Authorize(ctx context.Context, message any) error { return f(ctx, message) }

// RoleGated is implemented by messages restricted to callers holding a role.
// An empty role only requires an authenticated caller.
type RoleGated interface {
	RequiredRole() string
}

// RoleAuthorizer checks RoleGated messages against the principal in context.
// Messages that are not RoleGated are public.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	gated, ok := message.(RoleGated)
	if !ok {
		return nil
	}
	_, err := auth.RequireRole(ctx, gated.RequiredRole())
	return err
}

type keyed interface{ Key() string }

func authorize(ctx context.Context, a Authorizer, msg keyed) error {
	if err := a.Authorize(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", msg.Key(), err)
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := authorize(ctx, a, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := authorize(ctx, a, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

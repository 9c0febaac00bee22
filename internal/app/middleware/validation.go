package middleware

import (
	"context"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// DatedMessage validates against the current calendar day, e.g. booking dates
// that must not lie in the past.
type DatedMessage interface {
	ValidateAt(today time.Time) error
}

// SelfValidator delegates to messages that know how to validate themselves.
// Messages implementing DatedMessage are checked against Now.
type SelfValidator struct {
	Now func() time.Time
}

func (v SelfValidator) Validate(_ context.Context, message any) error {
	switch m := message.(type) {
	case DatedMessage:
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		return m.ValidateAt(now())
	case interface{ Validate() error }:
		return m.Validate()
	}
	return nil
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

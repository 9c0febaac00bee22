// Package commands routes storefront write operations (bookings, checkouts,
// reviews, hotel creation) to their handlers.
package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a write intent identified by a stable key such as "booking.create".
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets plain functions serve as handlers in tests and wiring.
type HandlerFunc[C Command, R any] func(context.Context, C) (R, error)

func (fn HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) { return fn(ctx, cmd) }

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// ResultMismatch reports a handler whose result does not fit the caller's
// expected type. It matches ErrResultType.
type ResultMismatch struct {
	Command string
	Got     any
	Want    any
}

func (e *ResultMismatch) Error() string {
	return fmt.Sprintf("commands: %s produced %T, caller expects %T", e.Command, e.Got, e.Want)
}

func (e *ResultMismatch) Is(target error) bool { return target == ErrResultType }

// Dispatch sends cmd through bus and narrows the result to R. Handlers that
// return nil produce the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var out R
	if bus == nil {
		return out, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return out, err
	}
	switch typed := res.(type) {
	case nil:
	case R:
		out = typed
	default:
		return out, &ResultMismatch{Command: cmd.Key(), Got: res, Want: out}
	}
	return out, nil
}

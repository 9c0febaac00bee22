// Package queries routes storefront reads (catalog, bookings, checkout status)
// to their handlers.
package queries

import (
	"context"
	"errors"
	"fmt"
)

type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(context.Context, Q) (R, error)

func (fn HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) { return fn(ctx, query) }

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// ResultMismatch matches ErrResultType.
type ResultMismatch struct {
	Query string
	Got   any
	Want  any
}

func (e *ResultMismatch) Error() string {
	return fmt.Sprintf("queries: %s produced %T, caller expects %T", e.Query, e.Got, e.Want)
}

func (e *ResultMismatch) Is(target error) bool { return target == ErrResultType }

// Ask runs query through bus and narrows the answer to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var out R
	if bus == nil {
		return out, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return out, err
	}
	if res == nil {
		return out, nil
	}
	typed, ok := res.(R)
	if !ok {
		return out, &ResultMismatch{Query: query.Key(), Got: res, Want: out}
	}
	return typed, nil
}

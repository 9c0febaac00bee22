// Package uow scopes the storefront's own writes (outbox records) to a single
// command so they persist only when the command succeeds.
package uow

import (
	"context"
	"errors"

	"hotelfront/internal/app/outbox"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type UnitOfWork interface {
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

type unitKey struct{}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// OutboxFor prefers the outbox of the unit of work running in ctx and falls
// back to box outside a transaction.
func OutboxFor(ctx context.Context, box outbox.Outbox) (outbox.Outbox, error) {
	if unit, ok := FromContext(ctx); ok {
		if txBox := unit.Outbox(); txBox != nil {
			return txBox, nil
		}
	}
	if box == nil {
		return nil, ErrUnitOfWorkMissing
	}
	return box, nil
}

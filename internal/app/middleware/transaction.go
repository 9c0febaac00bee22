package middleware

import (
	"context"
	"errors"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/uow"
)

var ErrUnitOfWorkMissing = errors.New("middleware: unit of work not found")

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// PartialFailure is implemented by errors returned after an upstream write
// already happened. The unit of work still commits so the events describing
// that write are published.
type PartialFailure interface {
	error
	KeepsWrites() bool
}

func keepsWrites(err error) bool {
	var pf PartialFailure
	return errors.As(err, &pf) && pf.KeepsWrites()
}

func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			execCtx := ctx
			if injector, ok := unit.(interface {
				InjectContext(context.Context) context.Context
			}); ok {
				execCtx = injector.InjectContext(ctx)
			}
			execCtx = uow.ContextWithUnitOfWork(execCtx, unit)

			res, err := nextFn(execCtx, cmd)
			if err != nil && !keepsWrites(err) {
				_ = unit.Rollback(execCtx)
				return nil, err
			}
			if commitErr := unit.Commit(execCtx); commitErr != nil {
				_ = unit.Rollback(execCtx)
				return nil, errors.Join(err, commitErr)
			}
			return res, err
		})
	}
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/queries"
)

// ErrHandlerPanic is returned in place of a panic raised by a handler.
var ErrHandlerPanic = errors.New("middleware: handler panicked")

// RecoverCommands turns handler panics into ErrHandlerPanic. Browse sessions
// dispatch from background goroutines where gin's recovery does not reach.
func RecoverCommands(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			defer recovered(logger, "command", cmd.Key(), &err)
			return nextFn(ctx, cmd)
		})
	}
}

func RecoverQueries(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (res any, err error) {
			defer recovered(logger, "query", q.Key(), &err)
			return nextFn(ctx, q)
		})
	}
}

func recovered(logger *slog.Logger, kind, key string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("handler panic", "kind", kind, "key", key, "panic", r, "stack", string(debug.Stack()))
	*err = fmt.Errorf("%w: %s %s: %v", ErrHandlerPanic, kind, key, r)
}

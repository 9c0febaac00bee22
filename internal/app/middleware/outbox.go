package middleware

import (
	"context"

	"hotelfront/internal/app/commands"
)

// Flusher wakes the outbox relay. Flush must not block.
type Flusher interface {
	Flush()
}

// OutboxFlush asks the relay to publish right after a command succeeds instead
// of waiting for its next poll.
func OutboxFlush(f Flusher) CommandMiddleware {
	if f == nil {
		panic("middleware: outbox flusher required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err == nil || keepsWrites(err) {
				f.Flush()
			}
			return res, err
		})
	}
}

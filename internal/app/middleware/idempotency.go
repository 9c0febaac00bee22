package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/domain/auth"
)

// MaxIdempotencyKeyLen bounds client supplied Idempotency-Key headers.
const MaxIdempotencyKeyLen = 128

var (
	ErrIdempotencyKeyTooLong = errors.New("middleware: idempotency key too long")
	errMissingPrototype      = errors.New("middleware: idempotent command requires result prototype")
)

// IdempotentCommand replays its first successful result when retried with the
// same key by the same caller.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// ScopedKey namespaces a client key by command and caller so two guests
// reusing a key never see each other's checkout.
func ScopedKey(ctx context.Context, commandKey, clientKey string) string {
	owner := "anonymous"
	if p, ok := auth.PrincipalFromContext(ctx); ok && p.Authenticated() {
		owner = p.UserID
	}
	return commandKey + ":" + owner + ":" + clientKey
}

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			clientKey := strings.TrimSpace(idCmd.IdempotencyKey())
			if clientKey == "" {
				return nextFn(ctx, cmd)
			}
			if len(clientKey) > MaxIdempotencyKeyLen {
				return nil, ErrIdempotencyKeyTooLong
			}
			key := ScopedKey(ctx, cmd.Key(), clientKey)
			if rec, found, err := store.Get(ctx, key); err != nil {
				return nil, err
			} else if found {
				return replay(codec, rec, idCmd.ResultPrototype())
			}

			result, err := nextFn(ctx, cmd)
			if err != nil {
				// failures are not remembered so the caller can retry with the same key
				return nil, err
			}
			record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if result != nil {
				if record.Payload, err = codec.Encode(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

// replay decodes a stored result into the command's prototype, which must be
// a pointer of the handler's result type.
func replay(codec ResultCodec, rec IdempotencyRecord, proto any) (any, error) {
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return proto, nil
}

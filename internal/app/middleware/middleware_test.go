package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/app/uow"
	"hotelfront/internal/domain/auth"
)

type payCmd struct {
	key  string
	role string
	bad  bool
}

func (c payCmd) Key() string            { return "test.pay" }
func (c payCmd) IdempotencyKey() string { return c.key }
func (c payCmd) ResultPrototype() any   { return &payResult{} }
func (c payCmd) RequiredRole() string   { return c.role }
func (c payCmd) Validate() error {
	if c.bad {
		return errors.New("bad command")
	}
	return nil
}

type payResult struct {
	N int `json:"n"`
}

type memIdempotency struct {
	mu   sync.Mutex
	recs map[string]IdempotencyRecord
}

func (m *memIdempotency) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key]
	return rec, ok, nil
}

func (m *memIdempotency) Save(_ context.Context, rec IdempotencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.Key] = rec
	return nil
}

func countingBus(calls *int, fail *error) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[payCmd, *payResult](bus, "test.pay", commands.HandlerFunc[payCmd, *payResult](
		func(ctx context.Context, cmd payCmd) (*payResult, error) {
			*calls++
			if *fail != nil {
				return nil, *fail
			}
			return &payResult{N: *calls}, nil
		}))
	return bus
}

func TestIdempotencyReplaysFirstSuccess(t *testing.T) {
	calls := 0
	var fail error
	store := &memIdempotency{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, &fail), Idempotency(store, nil))

	first, err := commands.Dispatch[payCmd, *payResult](context.Background(), bus, payCmd{key: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[payCmd, *payResult](context.Background(), bus, payCmd{key: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.N, second.N)
	assert.Contains(t, store.recs, "test.pay:k1")
}

func TestIdempotencyDoesNotRememberFailures(t *testing.T) {
	calls := 0
	fail := errors.New("upstream down")
	store := &memIdempotency{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, &fail), Idempotency(store, nil))

	_, err := commands.Dispatch[payCmd, *payResult](context.Background(), bus, payCmd{key: "k2"})
	require.ErrorIs(t, err, fail)

	fail = nil
	res, err := commands.Dispatch[payCmd, *payResult](context.Background(), bus, payCmd{key: "k2"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.N)
}

func TestIdempotencySkipsEmptyKey(t *testing.T) {
	calls := 0
	var fail error
	store := &memIdempotency{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, &fail), Idempotency(store, nil))

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[payCmd, *payResult](context.Background(), bus, payCmd{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.recs)
}

func TestAuthorizationChecksRoles(t *testing.T) {
	calls := 0
	var fail error
	bus := ChainCommands(countingBus(&calls, &fail), Authorization(RoleAuthorizer{}))

	_, err := bus.Dispatch(context.Background(), payCmd{})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	guest := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "u1"})
	_, err = bus.Dispatch(guest, payCmd{role: auth.RoleAdmin})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = bus.Dispatch(guest, payCmd{})
	assert.NoError(t, err)

	admin := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "a1", Roles: []string{auth.RoleAdmin}})
	_, err = bus.Dispatch(admin, payCmd{role: auth.RoleAdmin})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestValidationStopsInvalidCommands(t *testing.T) {
	calls := 0
	var fail error
	bus := ChainCommands(countingBus(&calls, &fail), Validation(SelfValidator{}))

	_, err := bus.Dispatch(context.Background(), payCmd{bad: true})
	assert.EqualError(t, err, "bad command")
	assert.Equal(t, 0, calls)
}

type fakeUnit struct {
	committed, rolledBack bool
}

func (u *fakeUnit) Outbox() outbox.Outbox          { return nil }
func (u *fakeUnit) Commit(context.Context) error   { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error { u.rolledBack = true; return nil }

type fakeFactory struct{ units []*fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsOrRollsBack(t *testing.T) {
	calls := 0
	var fail error
	factory := &fakeFactory{}
	bus := ChainCommands(countingBus(&calls, &fail), Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), payCmd{})
	require.NoError(t, err)
	fail = errors.New("boom")
	_, err = bus.Dispatch(context.Background(), payCmd{})
	require.Error(t, err)

	require.Len(t, factory.units, 2)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.False(t, factory.units[1].committed)
	assert.True(t, factory.units[1].rolledBack)
}

type kick struct{ n int }

func (k *kick) Flush() { k.n++ }

type observed struct {
	kind, key string
	err       error
}

type recorder struct{ got []observed }

func (r *recorder) Observe(kind, key string, _ time.Duration, err error) {
	r.got = append(r.got, observed{kind, key, err})
}

func TestOutboxFlushAndInstrumentation(t *testing.T) {
	calls := 0
	var fail error
	k := &kick{}
	rec := &recorder{}
	bus := ChainCommands(countingBus(&calls, &fail), InstrumentCommands(rec), OutboxFlush(k))

	_, _ = bus.Dispatch(context.Background(), payCmd{})
	fail = errors.New("nope")
	_, _ = bus.Dispatch(context.Background(), payCmd{})

	assert.Equal(t, 1, k.n)
	require.Len(t, rec.got, 2)
	assert.Equal(t, observed{"command", "test.pay", nil}, rec.got[0])
	assert.Equal(t, fail, rec.got[1].err)
}

type pingQuery struct{}

func (pingQuery) Key() string          { return "test.ping" }
func (pingQuery) RequiredRole() string { return auth.RoleAdmin }

func TestQueryMiddleware(t *testing.T) {
	bus := queries.NewInMemoryBus()
	queries.RegisterHandler[pingQuery, string](bus, "test.ping", queries.HandlerFunc[pingQuery, string](
		func(context.Context, pingQuery) (string, error) { return "pong", nil }))
	rec := &recorder{}
	chained := ChainQueries(bus, InstrumentQueries(rec), QueryValidation(SelfValidator{}), QueryAuthorization(RoleAuthorizer{}))

	_, err := queries.Ask[pingQuery, string](context.Background(), chained, pingQuery{})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	admin := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "a", Roles: []string{auth.RoleAdmin}})
	got, err := queries.Ask[pingQuery, string](admin, chained, pingQuery{})
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
	assert.Len(t, rec.got, 2)
}

type stayCmd struct{ checkIn time.Time }

func (stayCmd) Key() string { return "test.stay" }

func (c stayCmd) ValidateAt(today time.Time) error {
	if c.checkIn.Before(today) {
		return errors.New("in the past")
	}
	return nil
}

func TestSelfValidatorUsesClockForDatedMessages(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	v := SelfValidator{Now: func() time.Time { return today }}

	assert.Error(t, v.Validate(context.Background(), stayCmd{checkIn: today.AddDate(0, 0, -1)}))
	assert.NoError(t, v.Validate(context.Background(), stayCmd{checkIn: today}))
	assert.NoError(t, v.Validate(context.Background(), payCmd{}))
}

func TestIdempotencyKeysAreScopedPerCaller(t *testing.T) {
	calls := 0
	var fail error
	store := &memIdempotency{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, &fail), Idempotency(store, nil))
	alice := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "alice"})
	bob := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "bob"})

	_, err := bus.Dispatch(alice, payCmd{key: "same"})
	require.NoError(t, err)
	_, err = bus.Dispatch(bob, payCmd{key: "same"})
	require.NoError(t, err)
	_, err = bus.Dispatch(alice, payCmd{key: "same"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Contains(t, store.recs, "test.pay:alice:same")
	assert.Contains(t, store.recs, "test.pay:bob:same")
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	calls := 0
	var fail error
	store := &memIdempotency{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, &fail), Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), payCmd{key: strings.Repeat("k", MaxIdempotencyKeyLen+1)})

	assert.ErrorIs(t, err, ErrIdempotencyKeyTooLong)
	assert.Zero(t, calls)
}

type upstreamKept struct{ error }

func (upstreamKept) KeepsWrites() bool { return true }

func TestTransactionCommitsPartialFailures(t *testing.T) {
	calls := 0
	fail := error(upstreamKept{errors.New("checkout down")})
	factory := &fakeFactory{}
	k := &kick{}
	bus := ChainCommands(countingBus(&calls, &fail), OutboxFlush(k), Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), payCmd{})

	assert.EqualError(t, err, "checkout down")
	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.Equal(t, 1, k.n)
}

type panicQuery struct{}

func (panicQuery) Key() string { return "test.panic" }

func TestRecoverTurnsPanicsIntoErrors(t *testing.T) {
	qb := queries.NewInMemoryBus()
	queries.RegisterHandler[panicQuery, string](qb, "test.panic", queries.HandlerFunc[panicQuery, string](
		func(context.Context, panicQuery) (string, error) { panic("nil map") }))
	cb := commands.NewInMemoryBus()
	commands.RegisterHandler[payCmd, *payResult](cb, "test.pay", commands.HandlerFunc[payCmd, *payResult](
		func(context.Context, payCmd) (*payResult, error) { panic("boom") }))

	_, err := ChainQueries(qb, RecoverQueries(nil)).Ask(context.Background(), panicQuery{})
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "test.panic")

	_, err = ChainCommands(cb, RecoverCommands(nil)).Dispatch(context.Background(), payCmd{})
	assert.ErrorIs(t, err, ErrHandlerPanic)
}

func TestChainSkipsNilMiddleware(t *testing.T) {
	calls := 0
	var fail error
	bus := ChainCommands(countingBus(&calls, &fail), nil, Validation(SelfValidator{}))

	_, err := bus.Dispatch(context.Background(), payCmd{})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

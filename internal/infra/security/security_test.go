package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerifyReadsClaims(t *testing.T) {
	raw := sign(t, jwt.SigningMethodHS256, secret, Claims{
		Name: "Ada",
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	p, err := JWTVerifier{Secret: secret}.Verify(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "Ada", p.Name)
	assert.True(t, p.HasRole("admin"))
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := JWTVerifier{Secret: secret}
	expired := sign(t, jwt.SigningMethodHS256, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	noSubject := sign(t, jwt.SigningMethodHS256, secret, Claims{Name: "nobody"})
	wrongAlg := sign(t, jwt.SigningMethodHS512, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})

	for name, raw := range map[string]string{"expired": expired, "wrong key": wrongKey, "wrong alg": wrongAlg, "garbage": "abc.def.ghi"} {
		_, err := v.Verify(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
	_, err := v.Verify(context.Background(), noSubject)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestServiceTokensAreReusedUntilNearExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &ServiceTokens{Secret: secret, TTL: 10 * time.Minute, Now: func() time.Time { return now }}

	first, err := src.Token(context.Background())
	require.NoError(t, err)
	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	now = now.Add(9 * time.Minute)
	third, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestServiceTokenVerifies(t *testing.T) {
	src := &ServiceTokens{Secret: secret, Subject: "storefront", TTL: time.Minute}
	raw, err := src.Token(context.Background())
	require.NoError(t, err)

	p, err := JWTVerifier{Secret: secret}.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "storefront", p.UserID)
	assert.True(t, p.HasRole(ServiceRole))
}

func TestReadyGatePollsUntilReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gate := &ReadyGate{URL: srv.URL, Interval: 10 * time.Millisecond}
	require.False(t, gate.Ready())
	require.NoError(t, gate.Wait(context.Background()))
	assert.True(t, gate.Ready())
	assert.EqualValues(t, 3, calls.Load())

	require.NoError(t, gate.Wait(context.Background()))
	assert.EqualValues(t, 3, calls.Load())
}

func TestReadyGateHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := (&ReadyGate{URL: srv.URL, Interval: 10 * time.Millisecond}).Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadyGateWithoutURL(t *testing.T) {
	var gate *ReadyGate
	assert.NoError(t, gate.Wait(context.Background()))
	assert.True(t, (&ReadyGate{}).Ready())
}

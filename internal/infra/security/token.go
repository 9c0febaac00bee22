package security

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ServiceRole = "service"

// ServiceTokens issues short-lived tokens the storefront uses for calls that
// no longer have a caller token at hand. A token is reused until a fifth of
// its lifetime remains.
type ServiceTokens struct {
	Secret  []byte
	Subject string
	TTL     time.Duration
	Now     func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

func (s *ServiceTokens) Token(_ context.Context) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrSecretRequired
	}
	now := s.now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" && now.Before(s.expires.Add(-ttl/5)) {
		return s.current, nil
	}
	subject := s.Subject
	if subject == "" {
		subject = "hotelfront"
	}
	expires := now.Add(ttl)
	claims := Claims{
		Name: subject,
		Role: ServiceRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", err
	}
	s.current, s.expires = signed, expires
	return signed, nil
}

func (s *ServiceTokens) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

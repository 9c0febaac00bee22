package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "hotelfront/internal/domain/auth"
)

var ErrMalformedHeader = errors.New("auth: authorization header must be a bearer token")

// TokenVerifier checks a token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domainauth.Principal, error)
}

// Service turns bearer credentials into principals.
type Service struct {
	Verifier TokenVerifier
	Logger   *slog.Logger
}

// ResolveHeader accepts an Authorization header value.
func (s *Service) ResolveHeader(ctx context.Context, header string) (domainauth.Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return domainauth.Principal{}, domainauth.ErrTokenRequired
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return domainauth.Principal{}, ErrMalformedHeader
	}
	return s.ResolveToken(ctx, token)
}

func (s *Service) ResolveToken(ctx context.Context, token string) (domainauth.Principal, error) {
	if s.Verifier == nil {
		return domainauth.Principal{}, errors.New("auth: token verifier required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Principal{}, domainauth.ErrTokenRequired
	}
	principal, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Debug("token rejected", "error", err)
		}
		return domainauth.Principal{}, domainauth.ErrUnauthorized
	}
	principal.Token = token
	return principal, nil
}

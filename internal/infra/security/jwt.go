package security

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domainauth "hotelfront/internal/domain/auth"
)

var (
	ErrInvalidToken   = errors.New("security: invalid token")
	ErrMissingSubject = errors.New("security: token has no subject")
	ErrSecretRequired = errors.New("security: signing secret required")
)

// Claims carried by tokens of the identity provider.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 bearer tokens signed with the provider's shared secret.
type JWTVerifier struct {
	Secret []byte
	Issuer string
}

func (v JWTVerifier) Verify(_ context.Context, raw string) (domainauth.Principal, error) {
	if len(v.Secret) == 0 {
		return domainauth.Principal{}, ErrSecretRequired
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return domainauth.Principal{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domainauth.Principal{}, ErrMissingSubject
	}
	p := domainauth.Principal{UserID: claims.Subject, Name: claims.Name}
	for _, role := range strings.Split(claims.Role, ",") {
		if role = strings.TrimSpace(role); role != "" {
			p.Roles = append(p.Roles, role)
		}
	}
	return p, nil
}

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*TokenClaims, error)
}

// TokenClaims holds the claims from a verified token.
type TokenClaims struct {
	Subject  string
	Audience []string
	Issuer   string
	Expiry   time.Time
	Claims   map[string]any
}

// TokenAuthenticator authenticates requests carrying an
// "Authorization: Bearer <token>" header.
type TokenAuthenticator struct {
	verifier TokenVerifier
}

// NewTokenAuthenticator creates a bearer token authenticator backed by verifier.
func NewTokenAuthenticator(verifier TokenVerifier) *TokenAuthenticator {
	return &TokenAuthenticator{verifier: verifier}
}

// Authenticate extracts the bearer token, verifies it and returns the
// token subject as the authenticated identity.
func (a *TokenAuthenticator) Authenticate(
	r *http.Request,
) (*AuthInfo, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrUnauthenticated
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &AuthInfo{
		Method:  AuthMethodJWT,
		Subject: claims.Subject,
		Claims:  claims.Claims,
	}, nil
}

// Method returns the authentication method type.
func (a *TokenAuthenticator) Method() AuthMethod {
	return AuthMethodJWT
}

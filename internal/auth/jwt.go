package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a JWT verifier is built without a key.
var ErrEmptySecret = errors.New("jwt auth: secret must not be empty")

// JWTVerifier verifies HMAC-signed JWTs, optionally pinning issuer and audience.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier for HS256/HS384/HS512 tokens signed
// with secret. Empty issuer or audience disables that check.
func NewJWTVerifier(secret, issuer, audience string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify parses rawToken, checks its signature and registered claims, and
// returns the claims.
func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}

	_, err := v.parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("read subject: %w", err)
	}
	if sub == "" {
		return nil, errors.New("token has no subject")
	}

	iss, _ := claims.GetIssuer()
	aud, _ := claims.GetAudience()

	out := &TokenClaims{
		Subject:  sub,
		Audience: aud,
		Issuer:   iss,
		Claims:   map[string]any(claims),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expiry = exp.Time
	}

	return out, nil
}

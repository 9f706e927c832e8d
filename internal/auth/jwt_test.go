package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/shopcart/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "user-42",
		"iss":  "https://issuer.example.com",
		"aud":  "shopcart",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"role": "shopper",
	}
}

func TestNewJWTVerifier_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := auth.NewJWTVerifier("", "", "")

	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestJWTVerifier_Verify(t *testing.T) {
	t.Parallel()

	verifier, err := auth.NewJWTVerifier(testSecret, "https://issuer.example.com", "shopcart")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "valid token",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())
			},
		},
		{
			name: "HS512 accepted",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims())
			},
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := validClaims()
				c["exp"] = time.Now().Add(-time.Minute).Unix()
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: true,
		},
		{
			name: "missing exp",
			token: func(t *testing.T) string {
				c := validClaims()
				delete(c, "exp")
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: true,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				c := validClaims()
				c["iss"] = "https://evil.example.com"
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: true,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				c := validClaims()
				c["aud"] = "billing"
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				c := validClaims()
				delete(c, "sub")
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: true,
		},
		{
			name: "unsigned token",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(_ *testing.T) string { return "not.a.jwt" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := verifier.Verify(context.Background(), tt.token(t))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-42", claims.Subject)
			assert.Equal(t, "https://issuer.example.com", claims.Issuer)
			assert.Equal(t, []string{"shopcart"}, claims.Audience)
			assert.Equal(t, "shopper", claims.Claims["role"])
			assert.False(t, claims.Expiry.IsZero())
		})
	}
}

func TestTokenAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()

	verifier, err := auth.NewJWTVerifier(testSecret, "", "")
	require.NoError(t, err)
	authenticator := auth.NewTokenAuthenticator(verifier)

	good := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid bearer", "Bearer " + good, nil},
		{"no header", "", auth.ErrUnauthenticated},
		{"basic scheme", "Basic dXNlcjpwYXNz", auth.ErrUnauthenticated},
		{"bad token", "Bearer abc.def.ghi", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			info, err := authenticator.Authenticate(req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-42", info.Subject)
			assert.Equal(t, auth.AuthMethodJWT, info.Method)
		})
	}

	assert.Equal(t, auth.AuthMethodJWT, authenticator.Method())
}

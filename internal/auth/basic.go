package auth

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against for unknown users so that unknown-user and
// wrong-password failures cost the same bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shopcart-unknown-user"), bcrypt.DefaultCost)

// BasicAuthenticator authenticates requests using HTTP Basic authentication
// with bcrypt-hashed passwords.
type BasicAuthenticator struct {
	users map[string][]byte // username -> bcrypt hash
}

// NewBasicAuthenticator parses usersConfig in the format
// "user1:hash1,user2:hash2". Bcrypt hashes contain '$' but no colons.
func NewBasicAuthenticator(usersConfig string) (*BasicAuthenticator, error) {
	entries, err := parseCredentialList("basic auth", usersConfig, "user:hash")
	if err != nil {
		return nil, err
	}

	users := make(map[string][]byte, len(entries))
	for user, hash := range entries {
		users[user] = []byte(hash)
	}

	return &BasicAuthenticator{users: users}, nil
}

// Authenticate verifies the Basic credentials against the stored hash.
// Unknown users and wrong passwords yield the same error.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrUnauthenticated
	}

	hash, exists := a.users[username]
	if !exists {
		hash = dummyHash
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !exists {
		return nil, ErrInvalidCredentials
	}

	return &AuthInfo{
		Method:  AuthMethodBasic,
		Subject: username,
	}, nil
}

// Method returns the authentication method type.
func (a *BasicAuthenticator) Method() AuthMethod {
	return AuthMethodBasic
}

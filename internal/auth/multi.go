package auth

import (
	"errors"
	"net/http"
)

// MultiAuthenticator tries authenticators in order. A method that finds no
// credentials (ErrUnauthenticated) passes to the next; a method that finds
// bad credentials ends the attempt.
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator creates a MultiAuthenticator over authenticators.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{authenticators: authenticators}
}

// Authenticate returns the first successful result.
func (a *MultiAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	for _, authenticator := range a.authenticators {
		info, err := authenticator.Authenticate(r)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
	}

	return nil, ErrUnauthenticated
}

// Method returns the authentication method type.
func (a *MultiAuthenticator) Method() AuthMethod {
	return AuthMethodMulti
}

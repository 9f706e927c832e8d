package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the HTTP header name for API key authentication.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator authenticates requests by the X-API-Key header.
type APIKeyAuthenticator struct {
	keys map[string]string // key value -> client name
}

// NewAPIKeyAuthenticator parses keysConfig in the format
// "key1:name1,key2:name2".
func NewAPIKeyAuthenticator(keysConfig string) (*APIKeyAuthenticator, error) {
	keys, err := parseCredentialList("apikey auth", keysConfig, "key:name")
	if err != nil {
		return nil, err
	}

	return &APIKeyAuthenticator{keys: keys}, nil
}

// Authenticate compares the presented key against every configured key in
// constant time and reports the matching client name as the subject.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	apiKey := r.Header.Get(APIKeyHeader)
	if apiKey == "" {
		return nil, ErrUnauthenticated
	}

	var subject string
	for key, name := range a.keys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			subject = name
		}
	}

	if subject == "" {
		return nil, ErrInvalidAPIKey
	}

	return &AuthInfo{
		Method:  AuthMethodAPIKey,
		Subject: subject,
	}, nil
}

// Method returns the authentication method type.
func (a *APIKeyAuthenticator) Method() AuthMethod {
	return AuthMethodAPIKey
}

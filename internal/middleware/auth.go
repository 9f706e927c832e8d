package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/auth"
)

// publicPaths are served without authentication.
var publicPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// Auth returns a middleware that authenticates requests and stores the
// result in the request context. Public paths, CORS preflight requests and
// WebSocket upgrades pass through unauthenticated.
func Auth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) || r.Method == http.MethodOptions || isWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}

			info, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", getRequestID(r)),
					zap.Error(err),
				)
				writeAuthError(w, err)
				return
			}

			logger.Debug("authentication successful",
				zap.String("subject", info.Subject),
				zap.String("method", string(info.Method)),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithAuthInfo(r.Context(), info)))
		})
	}
}

// isPublicPath matches public paths and their sub-paths, but not paths
// that only share a prefix (/healthz is not public).
func isPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}

	for p := range publicPaths {
		if strings.HasPrefix(path, p+"/") {
			return true
		}
	}

	return false
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// writeAuthError writes a 401 in the API error envelope with a
// WWW-Authenticate challenge matching the failure.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer, Basic, API-Key")
	case errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", `Basic realm="shopcart"`)
	case errors.Is(err, auth.ErrInvalidAPIKey):
		w.Header().Set("WWW-Authenticate", "API-Key")
	}

	writeJSONError(w, http.StatusUnauthorized, err.Error())
}

package chi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Keys are the accepted bearer tokens. Read keys reach search and the dirty
// record view; admin keys also reach hooks, sync and maintenance.
type Keys struct {
	Read  []string
	Admin []string
}

type scope int

const (
	scopeRead scope = iota + 1
	scopeAdmin
)

type scopeCtxKey struct{}

// BearerAuthMiddleware validates Bearer tokens and records the caller's scope.
// With no keys configured, authentication is disabled and every caller is admin.
func BearerAuthMiddleware(keys Keys) func(http.Handler) http.Handler {
	read := nonEmpty(keys.Read)
	admin := nonEmpty(keys.Admin)

	return func(next http.Handler) http.Handler {
		if len(read) == 0 && len(admin) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, withScope(r, scopeAdmin))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					CodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			token := []byte(auth[len(bearerPrefix):])
			switch {
			case matchKey(token, admin):
				next.ServeHTTP(w, withScope(r, scopeAdmin))
			case matchKey(token, read):
				next.ServeHTTP(w, withScope(r, scopeRead))
			default:
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
			}
		})
	}
}

// RequireAdmin rejects callers authenticated with a read key. Requests that
// did not pass through BearerAuthMiddleware carry no scope and are let through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := r.Context().Value(scopeCtxKey{}).(scope); ok && s != scopeAdmin {
			writeError(w, http.StatusForbidden, CodeForbidden, "admin key required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withScope(r *http.Request, s scope) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), scopeCtxKey{}, s))
}

// matchKey compares token against every key in constant time.
func matchKey(token []byte, keys [][]byte) bool {
	found := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(token, k) == 1 {
			found = true
		}
	}
	return found
}

func nonEmpty(keys []string) [][]byte {
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

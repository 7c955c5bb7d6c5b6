package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(t *testing.T, h http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_NoKeys_PassThrough(t *testing.T) {
	for _, keys := range []Keys{{}, {Read: []string{"", ""}, Admin: []string{""}}} {
		handler := BearerAuthMiddleware(keys)(RequireAdmin(okHandler()))
		rr := serveAuth(t, handler, "PUT", "/v1/maintenance", "")
		if rr.Code != http.StatusOK {
			t.Errorf("keys %+v: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	handler := BearerAuthMiddleware(Keys{Read: []string{"reader"}, Admin: []string{"admin"}})(okHandler())

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"unknown token", "Bearer wrong-key"},
		{"prefix of a key", "Bearer admi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAuth(t, handler, "GET", "/v1/indexes/main/search", tt.header)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, CodeUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_Scopes(t *testing.T) {
	keys := Keys{Read: []string{"reader"}, Admin: []string{"admin1", "admin2"}}
	read := BearerAuthMiddleware(keys)(okHandler())
	write := BearerAuthMiddleware(keys)(RequireAdmin(okHandler()))

	tests := []struct {
		name    string
		handler http.Handler
		token   string
		want    int
	}{
		{"reader searches", read, "reader", http.StatusOK},
		{"admin searches", read, "admin1", http.StatusOK},
		{"second admin key", write, "admin2", http.StatusOK},
		{"admin pushes", write, "admin1", http.StatusOK},
		{"reader pushes", write, "reader", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAuth(t, tt.handler, "POST", "/v1/hooks/update", "Bearer "+tt.token)
			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	handler := BearerAuthMiddleware(Keys{Read: []string{"secret"}})(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		rr := serveAuth(t, handler, "GET", path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("exempt path %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestRequireAdmin_RouterWiring(t *testing.T) {
	ts := newTestServer(t)
	handler := BearerAuthMiddleware(Keys{Read: []string{"reader"}, Admin: []string{"admin"}})(ts.router)

	rr := serveAuth(t, handler, "PUT", "/v1/maintenance", "Bearer reader")
	if rr.Code != http.StatusForbidden {
		t.Errorf("reader PUT maintenance: got %d, want %d", rr.Code, http.StatusForbidden)
	}
	if got := decodeError(t, rr).Code; got != CodeForbidden {
		t.Errorf("code = %q", got)
	}

	rr = serveAuth(t, handler, "GET", "/v1/maintenance", "Bearer reader")
	if rr.Code != http.StatusOK {
		t.Errorf("reader GET maintenance: got %d, want %d", rr.Code, http.StatusOK)
	}
}

package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware guards the HTTP transport with a bearer token or plain
// API key. An empty apiKey passes all requests through.
func AuthMiddleware(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		switch {
		case header == "":
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
		case !keyMatches(header, apiKey):
			http.Error(w, "invalid credentials", http.StatusForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// keyMatches accepts both "Bearer <key>" and a bare key. The comparison is
// constant time so the key cannot be probed byte by byte.
func keyMatches(header, key string) bool {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		token = header
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1
}

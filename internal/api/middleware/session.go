package middleware

import (
	"net/http"
	"strings"

	"github.com/hszk-dev/aora/internal/session"
)

const bearerPrefix = "Bearer "

// Session moves the bearer token of the Authorization header into the request context.
// Requests without one pass through unchanged; operations decide whether they need it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithToken(r.Context(), token)))
	})
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

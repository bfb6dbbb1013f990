// Package session carries the caller's session token through a context.
package session

import "context"

type contextKey struct{}

// WithToken returns a copy of ctx that carries token.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, token)
}

// TokenFromContext returns the session token stored in ctx, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(contextKey{}).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

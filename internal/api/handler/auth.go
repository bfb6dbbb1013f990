package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/session"
	"github.com/hszk-dev/aora/internal/usecase"
)

type userContextKey struct{}

// RequireUser resolves the session's user before the handler runs.
// Requests without a valid session get 401.
func RequireUser(svc usecase.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := session.TokenFromContext(r.Context()); !ok {
				unauthorized(w)
				return
			}

			user, err := svc.GetCurrentUser(r.Context())
			switch {
			case err == nil && user != nil:
			case err == nil, model.IsNotFound(err), errors.Is(err, repository.ErrUnauthorized):
				unauthorized(w)
				return
			default:
				handleServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerFrom returns the user resolved by RequireUser.
func callerFrom(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey{}).(*model.User)
	return user
}

// requireOwner writes 403 unless userID names the caller.
func requireOwner(w http.ResponseWriter, r *http.Request, userID string) bool {
	caller := callerFrom(r.Context())
	if caller == nil || caller.ID != userID {
		Error(w, http.StatusForbidden, "forbidden", "Cannot act on behalf of another user")
		return false
	}
	return true
}

func unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized", "A valid session is required")
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
)

// handleServiceError maps the domain error taxonomy onto HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	var vErr *model.ValidationError
	var nfErr *model.NotFoundError

	switch {
	case errors.As(err, &vErr):
		Error(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, repository.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, repository.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized", "A valid session is required")
	case errors.Is(err, repository.ErrAccountExists):
		Error(w, http.StatusConflict, "account_exists", "An account with this email already exists")
	case errors.As(err, &nfErr):
		Error(w, http.StatusNotFound, "not_found", nfErr.Error())
	case model.IsSchema(err):
		slog.Error("malformed document from store", slog.String("error", err.Error()))
		Error(w, http.StatusBadGateway, "malformed_document", "The store returned a malformed record")
	case model.IsRemote(err):
		Error(w, http.StatusBadGateway, "remote_error", err.Error())
	default:
		slog.Error("unexpected error", slog.String("error", err.Error()))
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

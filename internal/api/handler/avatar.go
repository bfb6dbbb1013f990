package handler

import (
	"net/http"
	"strconv"

	"github.com/hszk-dev/aora/internal/infrastructure/avatar"
)

// Avatar handles GET /v1/avatars/initials?name=&size= and renders an SVG.
func Avatar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	size, err := strconv.Atoi(q.Get("size"))
	if err != nil {
		size = avatar.DefaultSize
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(avatar.SVG(name, size))
}

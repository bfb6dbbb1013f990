package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/aora/internal/usecase"
)

// UserHandler serves accounts, sessions and per-user collections.
type UserHandler struct {
	svc usecase.Service
}

func NewUserHandler(svc usecase.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create handles POST /v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	out, err := h.svc.CreateUser(r.Context(), usecase.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, CreateUserResponse{
		User:    NewUserResponse(out.User),
		Session: NewSessionResponse(out.Session),
	})
}

// SignIn handles POST /v1/sessions
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	sess, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, NewSessionResponse(sess))
}

// SignOut handles DELETE /v1/sessions/current. It always succeeds.
func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.svc.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetCurrentUser(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, NewUserResponse(user))
}

// Posts handles GET /v1/users/{id}/posts
func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.GetUserPosts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, NewPostListResponse(posts))
}

// Saved handles GET /v1/users/{id}/saved
func (h *UserHandler) Saved(w http.ResponseWriter, r *http.Request) {
	refs, err := h.svc.GetSavedPosts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, NewSavedVideosResponse(refs))
}

// ToggleSaved handles POST /v1/users/{id}/saved/{videoID}. Only {id} itself may toggle.
func (h *UserHandler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	videoID := chi.URLParam(r, "videoID")
	if !requireOwner(w, r, userID) {
		return
	}

	saved, err := h.svc.SaveVideo(r.Context(), userID, videoID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.svc.CheckForUpdates(r.Context(), userID)

	JSON(w, http.StatusOK, SaveVideoResponse{VideoID: videoID, Saved: saved})
}

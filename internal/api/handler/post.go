package handler

import (
	"context"
	"net/http"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/usecase"
)

// PostHandler serves the post feeds and post creation.
type PostHandler struct {
	svc           usecase.Service
	maxUploadSize int64
}

func NewPostHandler(svc usecase.Service, maxUploadSize int64) *PostHandler {
	return &PostHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// List handles GET /v1/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.GetAllPosts)
}

// Latest handles GET /v1/posts/latest
func (h *PostHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.GetLatestPosts)
}

// Search handles GET /v1/posts/search?query=
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.SearchPosts(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, NewPostListResponse(posts))
}

// Create handles POST /v1/posts as multipart/form-data with title, prompt,
// user_id fields and thumbnail, video files. user_id defaults to the caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.maxUploadSize) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		if caller := callerFrom(r.Context()); caller != nil {
			userID = caller.ID
		}
	}
	if !requireOwner(w, r, userID) {
		return
	}

	thumbnail, closeThumb, err := formAsset(r, "thumbnail")
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer closeThumb()

	video, closeVideo, err := formAsset(r, "video")
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer closeVideo()

	post, err := h.svc.CreateVideoPost(r.Context(), model.PostForm{
		Title:     r.FormValue("title"),
		Prompt:    r.FormValue("prompt"),
		UserID:    userID,
		Thumbnail: thumbnail,
		Video:     video,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, NewPostResponse(post))
}

func (h *PostHandler) respond(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]*model.Post, error)) {
	posts, err := list(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, NewPostListResponse(posts))
}

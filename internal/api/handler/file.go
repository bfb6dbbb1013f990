package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/usecase"
)

// multipartMemory is how much of a multipart body is buffered before spilling to disk.
const multipartMemory = 32 << 20

// FileHandler serves uploads and derived file URLs.
type FileHandler struct {
	svc           usecase.Service
	maxUploadSize int64
}

func NewFileHandler(svc usecase.Service, maxUploadSize int64) *FileHandler {
	return &FileHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// Upload handles POST /v1/files?type=image|video with the content in the "file" field.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.maxUploadSize) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	asset, closeFile, err := formAsset(r, "file")
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	defer closeFile()
	if asset == nil {
		handleServiceError(w, model.Required("file"))
		return
	}

	url, err := h.svc.UploadFile(r.Context(), asset, model.MediaType(r.URL.Query().Get("type")))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, FileURLResponse{URL: url})
}

// Preview handles GET /v1/files/{id}/preview?type=image|video
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.GetFilePreview(r.Context(), chi.URLParam(r, "id"), model.MediaType(r.URL.Query().Get("type")))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, FileURLResponse{URL: url})
}

// parseMultipart bounds the body and parses it, writing the error response on failure.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) bool {
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Error(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("Upload exceeds the limit of %s", humanize.IBytes(uint64(tooLarge.Limit))))
		return false
	}
	Error(w, http.StatusBadRequest, "invalid_request", "Invalid multipart body")
	return false
}

// formAsset opens the named file part. A missing part yields a nil asset.
func formAsset(r *http.Request, field string) (*model.Asset, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to read %s: %w", field, err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	return &model.Asset{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Reader:   file,
	}, func() { _ = file.Close() }, nil
}

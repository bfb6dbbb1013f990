package model

import "io"

// MediaType selects which derived URL is produced for an uploaded file.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (m MediaType) IsValid() bool {
	switch m {
	case MediaImage, MediaVideo:
		return true
	default:
		return false
	}
}

func (m MediaType) String() string {
	return string(m)
}

// Asset is a local file picked for upload.
// MimeType may be empty, in which case the content type is sniffed.
// Size is -1 when unknown.
type Asset struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// PostForm carries the fields of a new video post.
type PostForm struct {
	Title     string `validate:"required"`
	Prompt    string `validate:"required"`
	UserID    string `validate:"required"`
	Thumbnail *Asset `validate:"required"`
	Video     *Asset `validate:"required"`
}

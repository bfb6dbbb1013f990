package model

import (
	"errors"
	"time"
)

// Post is a published short video.
type Post struct {
	ID        string
	Title     string
	Thumbnail string
	Video     string
	Prompt    string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title exceeds maximum length of 255 characters")
)

const maxTitleLength = 255

// ValidateTitle checks the title constraints shared by every write path.
func ValidateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/usecase"
)

// MissingFieldsMessage is shown when Submit rejects an incomplete form.
const MissingFieldsMessage = "Please provide all required fields."

// ErrMissingFields is returned by Submit when the form is incomplete.
var ErrMissingFields = errors.New("missing required fields")

// CreateForm is the draft of a new post.
type CreateForm struct {
	Title     string
	Prompt    string
	Thumbnail *model.Asset
	Video     *model.Asset
}

func (f CreateForm) complete() bool {
	return f.Title != "" && f.Prompt != "" && f.Thumbnail != nil && f.Video != nil
}

// Create holds the upload form.
type Create struct {
	svc    usecase.Service
	global *Global

	mu        sync.Mutex
	form      CreateForm
	uploading bool
}

func NewCreate(svc usecase.Service, global *Global) *Create {
	return &Create{svc: svc, global: global}
}

func (c *Create) Form() CreateForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Create) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

func (c *Create) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Title = title
}

func (c *Create) SetPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Prompt = prompt
}

// Pick attaches asset as the thumbnail for images or the video for videos.
func (c *Create) Pick(mediaType model.MediaType, asset *model.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch mediaType {
	case model.MediaImage:
		c.form.Thumbnail = asset
	case model.MediaVideo:
		c.form.Video = asset
	default:
		return &model.ValidationError{Field: "type", Reason: "must be image or video"}
	}
	return nil
}

// Submit publishes the form. An incomplete form is rejected and kept as is.
// Once an upload is attempted the form is reset whatever the outcome.
func (c *Create) Submit(ctx context.Context) (*model.Post, error) {
	c.mu.Lock()
	form := c.form
	if !form.complete() {
		c.mu.Unlock()
		return nil, ErrMissingFields
	}
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.form = CreateForm{}
		c.uploading = false
		c.mu.Unlock()
	}()

	return c.svc.CreateVideoPost(ctx, model.PostForm{
		Title:     form.Title,
		Prompt:    form.Prompt,
		UserID:    c.global.UserID(),
		Thumbnail: form.Thumbnail,
		Video:     form.Video,
	})
}

package screen

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Bookmark shows the signed-in user's saved videos.
type Bookmark struct {
	Saved *fetchstate.Hook[[]model.SavedVideoRef]

	svc    usecase.Service
	global *Global
}

func NewBookmark(svc usecase.Service, global *Global, opts ...fetchstate.Option) *Bookmark {
	return &Bookmark{
		Saved: fetchstate.New(func(ctx context.Context) ([]model.SavedVideoRef, error) {
			return svc.GetSavedPosts(ctx, global.UserID())
		}, opts...),
		svc:    svc,
		global: global,
	}
}

func (b *Bookmark) Activate(ctx context.Context) {
	b.Saved.Activate(ctx)
}

// IsSaved reports whether videoID is in the list currently held.
func (b *Bookmark) IsSaved(videoID string) bool {
	for _, ref := range b.Saved.State().Data {
		if ref.ID == videoID {
			return true
		}
	}
	return false
}

// Toggle saves or unsaves videoID and reloads the list.
// The list is not reloaded when the toggle fails.
func (b *Bookmark) Toggle(ctx context.Context, videoID string) (bool, error) {
	userID := b.global.UserID()
	saved, err := b.svc.SaveVideo(ctx, userID, videoID)
	if err != nil {
		return false, err
	}
	b.svc.CheckForUpdates(ctx, userID)

	b.Saved.Refetch(ctx)
	b.Saved.Wait()
	return saved, nil
}

package screen

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Home shows every post plus the latest posts strip.
type Home struct {
	Posts  *fetchstate.Hook[[]*model.Post]
	Latest *fetchstate.Hook[[]*model.Post]
}

func NewHome(svc usecase.Service, opts ...fetchstate.Option) *Home {
	return &Home{
		Posts:  fetchstate.New(svc.GetAllPosts, opts...),
		Latest: fetchstate.New(svc.GetLatestPosts, opts...),
	}
}

// Activate starts both fetches the first time the screen is shown.
func (h *Home) Activate(ctx context.Context) {
	h.Posts.Activate(ctx)
	h.Latest.Activate(ctx)
}

// Refresh reloads all posts, then the latest posts, and returns once both resolved.
func (h *Home) Refresh(ctx context.Context) {
	h.Posts.Refetch(ctx)
	h.Posts.Wait()
	h.Latest.Refetch(ctx)
	h.Latest.Wait()
}

// Wait blocks until both hooks are idle.
func (h *Home) Wait() {
	h.Posts.Wait()
	h.Latest.Wait()
}

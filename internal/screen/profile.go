package screen

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Profile shows the signed-in user's own posts.
type Profile struct {
	Posts *fetchstate.Hook[[]*model.Post]

	svc    usecase.Service
	global *Global
}

func NewProfile(svc usecase.Service, global *Global, opts ...fetchstate.Option) *Profile {
	return &Profile{
		Posts: fetchstate.New(func(ctx context.Context) ([]*model.Post, error) {
			return svc.GetUserPosts(ctx, global.UserID())
		}, opts...),
		svc:    svc,
		global: global,
	}
}

func (p *Profile) Activate(ctx context.Context) {
	p.Posts.Activate(ctx)
}

// Username falls back to a placeholder when nobody is signed in.
func (p *Profile) Username() string {
	if user := p.global.User(); user != nil && user.Username != "" {
		return user.Username
	}
	return "Unknown User"
}

// PostCount is the number of posts currently held.
func (p *Profile) PostCount() int {
	return len(p.Posts.State().Data)
}

// Logout signs out and forgets the user even when the remote sign-out fails.
func (p *Profile) Logout(ctx context.Context) {
	p.svc.SignOut(p.global.Context(ctx))
	p.global.Clear()
}

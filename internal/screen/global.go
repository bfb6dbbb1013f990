// Package screen holds the view-models behind the app's screens.
// They expose state for a renderer and never render anything themselves.
package screen

import (
	"context"
	"sync"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/session"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Global is the signed-in state shared by every screen.
type Global struct {
	mu      sync.RWMutex
	user    *model.User
	session *model.Session
}

func NewGlobal() *Global {
	return &Global{}
}

// SignIn records the session returned by sign-in or sign-up.
func (g *Global) SignIn(user *model.User, sess *model.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
	g.session = sess
}

// SetUser replaces the cached profile, keeping the session.
func (g *Global) SetUser(user *model.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
}

func (g *Global) User() *model.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// UserID returns the signed-in user's id, or "" when signed out.
func (g *Global) UserID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return ""
	}
	return g.user.ID
}

func (g *Global) IsLogged() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user != nil
}

// Clear forgets the user and session.
func (g *Global) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = nil
	g.session = nil
}

// Context returns ctx carrying the current session token, if any.
func (g *Global) Context(ctx context.Context) context.Context {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return ctx
	}
	return session.WithToken(ctx, g.session.Token)
}

// Load resolves the current user for the held session.
// A missing account or profile leaves the state signed out without an error.
func (g *Global) Load(ctx context.Context, svc usecase.Service) error {
	user, err := svc.GetCurrentUser(g.Context(ctx))
	if err != nil {
		if model.IsNotFound(err) {
			g.Clear()
			return nil
		}
		return err
	}
	g.SetUser(user)
	return nil
}

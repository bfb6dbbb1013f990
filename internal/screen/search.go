package screen

import (
	"context"
	"sync"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/fetchstate"
	"github.com/hszk-dev/aora/internal/usecase"
)

// Search shows the posts whose title matches the current query.
type Search struct {
	Results *fetchstate.Hook[[]*model.Post]

	mu    sync.RWMutex
	query string
}

func NewSearch(svc usecase.Service, query string, opts ...fetchstate.Option) *Search {
	s := &Search{query: query}
	s.Results = fetchstate.New(func(ctx context.Context) ([]*model.Post, error) {
		return svc.SearchPosts(ctx, s.Query())
	}, opts...)
	return s
}

func (s *Search) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Search) Activate(ctx context.Context) {
	s.Results.Activate(ctx)
}

// SetQuery changes the query and refetches the results.
func (s *Search) SetQuery(ctx context.Context, query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()

	s.Results.Refetch(ctx)
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/cache"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
)

// ActivityService handles activity events consumed by the worker.
type ActivityService interface {
	// HandleEvent processes one event. A returned error asks the queue to retry it.
	HandleEvent(ctx context.Context, event repository.ActivityEvent) error
}

type activityService struct {
	postCache cache.PostListCache
	logger    *slog.Logger
}

// NewActivityService creates an ActivityService. postCache may be nil when no list cache is deployed.
func NewActivityService(postCache cache.PostListCache, logger *slog.Logger) ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &activityService{postCache: postCache, logger: logger}
}

func (s *activityService) HandleEvent(ctx context.Context, event repository.ActivityEvent) error {
	metrics.ActivityEventsTotal.WithLabelValues(string(event.Type)).Inc()

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Int("retry_count", event.RetryCount),
	}
	if event.PostID != "" {
		attrs = append(attrs, slog.String("post_id", event.PostID))
	}

	switch event.Type {
	case repository.EventPostCreated:
		// Other API instances may still hold the previous feed.
		if s.postCache != nil {
			if err := s.postCache.Invalidate(ctx); err != nil {
				return fmt.Errorf("failed to invalidate post lists: %w", err)
			}
		}
		s.logger.Info("post lists invalidated", attrs...)
	case repository.EventUserCreated, repository.EventVideoSaved, repository.EventVideoUnsaved:
		s.logger.Info("activity recorded", attrs...)
	default:
		s.logger.Warn("dropping unknown activity event", attrs...)
	}
	return nil
}

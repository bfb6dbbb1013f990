package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an activity event.
type EventType string

const (
	EventUserCreated  EventType = "user.created"
	EventPostCreated  EventType = "post.created"
	EventVideoSaved   EventType = "video.saved"
	EventVideoUnsaved EventType = "video.unsaved"
)

// ActivityEvent is a user activity message.
type ActivityEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	PostID     string    `json:"post_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	RetryCount int       `json:"retry_count"`
}

// NewActivityEvent stamps a new event with an id and the current time.
func NewActivityEvent(typ EventType, userID, postID string) ActivityEvent {
	return ActivityEvent{
		ID:         uuid.New(),
		Type:       typ,
		UserID:     userID,
		PostID:     postID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher publishes activity events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event ActivityEvent) error
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	EventPublisher

	// ConsumeEvents starts consuming activity events from the queue.
	// The handler function is called for each received event.
	// Used by the worker service.
	ConsumeEvents(ctx context.Context, handler func(event ActivityEvent) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}

package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates record lifecycle notifications.
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeDeleted EventType = "deleted"
)

// Event describes a change to a stored embedding. Publishing is
// best-effort: a failed publish never fails the originating request.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	EmbeddingID string    `json:"embedding_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher exposes a minimal contract to emit lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subject returns the broker subject for an event type.
func Subject(t EventType) string {
	return "embeddings." + string(t)
}

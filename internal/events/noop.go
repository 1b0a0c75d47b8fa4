package events

import "context"

// NoOpPublisher discards events. Used when no queue is configured.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher instance
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// Publish does nothing and always succeeds
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

package ports

import (
	"context"
	"freight-match-service/internal/domain"
)

// Contract for handing notification events to the notification collaborator.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
	Close() error
}

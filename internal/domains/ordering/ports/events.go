package ports

import (
	"context"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

// EventPublisher announces ordering events to the kitchen display and other listeners.
// Publishing is best effort; the service logs and drops publish errors.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards events.
var NoopPublisher EventPublisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }

package broker

import (
	"context"

	"storefront-media/internal/domain"
)

// Notifier publishes artifact lifecycle events.
type Notifier interface {
	Publish(ctx context.Context, event domain.ArtifactEvent) error
	Close() error
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, event domain.ArtifactEvent) error { return nil }

func (NopNotifier) Close() error { return nil }

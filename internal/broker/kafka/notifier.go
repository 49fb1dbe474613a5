package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-media/internal/config"
	"storefront-media/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// ArtifactNotifier writes artifact events to a topic keyed by filename, so
// events about one artifact stay ordered within a partition.
type ArtifactNotifier struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewArtifactNotifier(cfg *config.Config) *ArtifactNotifier {
	return &ArtifactNotifier{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (n *ArtifactNotifier) Publish(ctx context.Context, event domain.ArtifactEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.producer.SendWithRetry(ctx, n.retries, []byte(event.Filename), value); err != nil {
		return fmt.Errorf("failed to send %s event: %w", event.Type, err)
	}
	return nil
}

func (n *ArtifactNotifier) Close() error {
	return n.producer.Close()
}

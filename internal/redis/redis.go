package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playmatatu/billiards/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ShotEventsChannel carries a models.ShotEvent for every resolved shot.
const ShotEventsChannel = "shot_events"

// Connect establishes a connection to Redis
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// EventBus publishes and receives shot events over Redis pub/sub.
type EventBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewEventBus(client *redis.Client, log zerolog.Logger) *EventBus {
	return &EventBus{client: client, log: log.With().Str("component", "events").Logger()}
}

// PublishShot announces a resolved shot.
func (b *EventBus) PublishShot(ctx context.Context, ev models.ShotEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, ShotEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish shot %d: %w", ev.ShotID, err)
	}
	return nil
}

// Subscribe calls handle for every shot event until ctx is cancelled.
// The subscription is confirmed before Subscribe returns.
func (b *EventBus) Subscribe(ctx context.Context, handle func(models.ShotEvent)) error {
	pubsub := b.client.Subscribe(ctx, ShotEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", ShotEventsChannel, err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		b.log.Info().Str("channel", ShotEventsChannel).Msg("subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ShotEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn().Err(err).Str("payload", msg.Payload).Msg("invalid shot event")
					continue
				}
				handle(ev)
			}
		}
	}()
	return nil
}

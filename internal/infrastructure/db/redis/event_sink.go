package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

// EventsChannel is the pub/sub channel dispatch events are broadcast on.
const EventsChannel = "dispatch:events"

// PubSubSink broadcasts dispatch events so dispatcher boards can refresh.
type PubSubSink struct {
	client  *redis.Client
	channel string
}

var _ ports.EventSink = (*PubSubSink)(nil)

// NewPubSubSink creates a PubSubSink publishing on EventsChannel.
func NewPubSubSink(client *redis.Client) *PubSubSink {
	return &PubSubSink{client: client, channel: EventsChannel}
}

func (p *PubSubSink) Name() string { return "redis_pubsub" }

// Write publishes the event as JSON.
func (p *PubSubSink) Write(ctx context.Context, event domain.DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal dispatch event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish dispatch event: %w", err)
	}
	return nil
}

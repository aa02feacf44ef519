package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Relay mirrors hub events over a Redis channel so that every API instance
// sees writes committed by its peers. Events the relay published itself are
// recognised by origin and skipped on receipt.
type Relay struct {
	hub     *Hub
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger
}

// NewRelay wires a hub to a Redis pub/sub channel.
func NewRelay(hub *Hub, client *redis.Client, channel string, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		hub:     hub,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Publish delivers locally and mirrors to Redis. Redis failures are logged
// and swallowed: notification is a side effect, not a correctness dependency.
func (r *Relay) Publish(evt Event) {
	evt.Origin = r.origin
	r.hub.Publish(evt)

	body, err := json.Marshal(evt)
	if err != nil {
		r.logger.Warn("event marshal failed", zap.String("event", evt.Name), zap.Error(err))
		return
	}
	if err := r.client.Publish(context.Background(), r.channel, body).Err(); err != nil {
		r.logger.Warn("event relay publish failed", zap.String("event", evt.Name), zap.Error(err))
	}
}

// Run consumes peer events until the context is cancelled. Meant to be run
// on its own goroutine.
func (r *Relay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.logger.Warn("event relay decode failed", zap.Error(err))
				continue
			}
			if evt.Origin == r.origin {
				continue
			}
			r.hub.Publish(evt)
		}
	}
}

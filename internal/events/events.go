// Package events carries change notifications over Redis pub/sub.
//
// The API server publishes after every successful write; watching clients
// subscribe and answer each event with a full refresh. Events never carry
// record data that a client would apply locally.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel names double as event types.
const (
	TypeCreated = "EVENT_APPLICATION_CREATED"
	TypeDeleted = "EVENT_APPLICATION_DELETED"
)

// Event is the JSON message body.
type Event struct {
	Type          string `json:"type"`
	ApplicationID string `json:"applicationId"`
}

// Publisher announces writes. Implementations must not fail the write.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Nop discards events. Used when REDIS_URL is unset.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// RedisPublisher publishes each event on the channel named by its type.
type RedisPublisher struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisPublisher returns a publisher over rdb.
func NewRedisPublisher(rdb *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, log: log}
}

// Publish is best effort: failures are logged and dropped.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("marshal event failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		p.log.Warn("publish event failed", zap.String("type", ev.Type), zap.String("applicationId", ev.ApplicationID), zap.Error(err))
	}
}

// Subscriber listens for change events.
type Subscriber struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewSubscriber returns a subscriber over rdb.
func NewSubscriber(rdb *redis.Client, log *zap.Logger) *Subscriber {
	return &Subscriber{rdb: rdb, log: log}
}

// Run subscribes to every event channel and calls onEvent for each message
// until ctx is cancelled. It returns an error only if the subscription could
// not be established.
func (s *Subscriber) Run(ctx context.Context, onEvent func(Event)) error {
	pubsub := s.rdb.Subscribe(ctx, TypeCreated, TypeDeleted)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info("subscribed to change events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("ignoring malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if ev.Type == "" {
				ev.Type = msg.Channel
			}
			onEvent(ev)
		}
	}
}

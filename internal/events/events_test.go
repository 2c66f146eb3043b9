package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobmate/tracker/internal/events"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisPublisher_Publish(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, events.TypeCreated)
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := events.NewRedisPublisher(rdb, zaptest.NewLogger(t))
	p.Publish(ctx, events.Event{Type: events.TypeCreated, ApplicationID: "42"})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, events.TypeCreated, msg.Channel)

	var ev events.Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, events.Event{Type: events.TypeCreated, ApplicationID: "42"}, ev)
}

func TestRedisPublisher_FailureIsNonFatal(t *testing.T) {
	mr, rdb := setupRedis(t)
	mr.Close()

	p := events.NewRedisPublisher(rdb, zaptest.NewLogger(t))
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), events.Event{Type: events.TypeDeleted, ApplicationID: "1"})
	})
}

func TestSubscriber_Run(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan events.Event, 4)
	done := make(chan error, 1)
	s := events.NewSubscriber(rdb, zaptest.NewLogger(t))
	go func() { done <- s.Run(ctx, func(ev events.Event) { got <- ev }) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(events.TypeDeleted)[events.TypeDeleted] == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(events.TypeDeleted, "not json")
	mr.Publish(events.TypeDeleted, `{"applicationId":"7"}`)

	select {
	case ev := <-got:
		assert.Equal(t, events.Event{Type: events.TypeDeleted, ApplicationID: "7"}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

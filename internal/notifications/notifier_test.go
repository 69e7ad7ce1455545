package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	received := make(chan string, 4)
	require.NoError(t, n.StartSubscriber(ctx, func(_, payload string) {
		received <- payload
	}))

	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishEvent(ctx, `{"type":"photo_created"}`))
		select {
		case payload := <-received:
			assert.JSONEq(t, `{"type":"photo_created"}`, payload)
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNotifier_NilRedisIsNoOp(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()

	require.NoError(t, n.PublishEvent(ctx, "x"))
	require.NoError(t, n.StartSubscriber(ctx, func(string, string) {
		t.Fatal("subscriber must not fire without redis")
	}))
}

func TestHubWiring_BroadcastsSubscribedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	c, err := h.Register("dev-1", nil)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, h.StartWiring(ctx, n))

	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishEvent(ctx, `{"type":"photo_liked"}`))
		select {
		case msg := <-c.Send:
			assert.JSONEq(t, `{"type":"photo_liked"}`, string(msg))
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

package photostore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_LocalDeliveryWithoutRedis(t *testing.T) {
	f := NewFeed(nil)
	_, ch := f.listen()

	f.Publish(context.Background())

	select {
	case <-ch:
	default:
		t.Fatal("no signal delivered")
	}
}

func TestFeed_SignalsCoalesce(t *testing.T) {
	f := NewFeed(nil)
	_, ch := f.listen()

	ctx := context.Background()
	f.Publish(ctx)
	f.Publish(ctx)
	f.Publish(ctx)

	// A burst collapses into one pending signal.
	<-ch
	select {
	case <-ch:
		t.Fatal("expected coalesced signal, got a second one")
	default:
	}
}

func TestFeed_DropStopsDelivery(t *testing.T) {
	f := NewFeed(nil)
	id, ch := f.listen()
	f.drop(id)

	f.Publish(context.Background())

	select {
	case <-ch:
		t.Fatal("dropped listener received signal")
	default:
	}
}

func TestFeed_RedisBridge(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewFeed(rdb)
	require.NoError(t, f.Start(ctx))
	_, ch := f.listen()

	// Give the subscriber a moment to attach before publishing.
	assert.Eventually(t, func() bool {
		f.Publish(ctx)
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

package photostore

import (
	"context"
	"log"
	"runtime/debug"
	"sync"

	"github.com/redis/go-redis/v9"
)

// changeChannel is the Redis pub/sub channel carrying photo collection changes.
// The payload is irrelevant; subscribers re-query on every message.
const changeChannel = "photos:changed"

// Feed fans collection-change signals out to local listeners. With Redis it
// also bridges changes across server instances; without Redis it degrades to
// single-instance local delivery.
type Feed struct {
	rdb *redis.Client

	mu        sync.Mutex
	listeners map[int]chan struct{}
	nextID    int
	started   bool
}

// NewFeed creates a change feed. rdb may be nil.
func NewFeed(rdb *redis.Client) *Feed {
	return &Feed{
		rdb:       rdb,
		listeners: make(map[int]chan struct{}),
	}
}

// Start attaches the Redis subscriber that forwards remote change messages to
// local listeners. It is a no-op without Redis or when already started.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.rdb == nil || f.started {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.mu.Unlock()

	sub := f.rdb.Subscribe(ctx, changeChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					f.signal()
				}()
			}
		}
	}()

	return nil
}

// Publish announces that the photo collection changed. With Redis attached the
// signal travels through pub/sub so every instance (including this one) picks
// it up; otherwise local listeners are signaled directly.
func (f *Feed) Publish(ctx context.Context) {
	f.mu.Lock()
	rdb := f.rdb
	started := f.started
	f.mu.Unlock()

	if rdb != nil && started {
		if err := rdb.Publish(ctx, changeChannel, "1").Err(); err != nil {
			log.Printf("feed publish failed, falling back to local delivery: %v", err)
			f.signal()
		}
		return
	}
	f.signal()
}

func (f *Feed) signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.listeners {
		select {
		case ch <- struct{}{}:
		default:
			// Listener already has a pending signal; change ticks coalesce.
		}
	}
}

func (f *Feed) listen() (int, chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	ch := make(chan struct{}, 1)
	f.listeners[id] = ch
	return id, ch
}

func (f *Feed) drop(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listeners, id)
}

package gallery

import (
	"context"
	"log/slog"
	"sync"

	"picwedding/internal/middleware"
	"picwedding/internal/models"
	"picwedding/internal/photostore"
)

// topSubscribeWindow is the fixed subscription window for the ranking view.
// Ranking accuracy degrades once more than this many photos exist; acceptable
// at one-wedding scale.
const topSubscribeWindow = 50

// TopCache holds the top-N photos by like count, recomputed on every change.
type TopCache struct {
	store photostore.Store
	count int

	mu          sync.RWMutex
	snapshot    []models.Photo
	loading     bool
	unsubscribe func()
}

// NewTopCache creates a ranking cache bounded to count photos.
func NewTopCache(store photostore.Store, count int) *TopCache {
	return &TopCache{
		store:   store,
		count:   count,
		loading: true,
	}
}

// Start eagerly fetches the top photos, then attaches the live subscription.
func (c *TopCache) Start(ctx context.Context) error {
	photos, err := c.store.FetchPage(ctx, photostore.MostLiked, c.count, 0)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "initial top photo fetch failed",
			slog.String("error", err.Error()))
		photos = nil
	}
	c.replace(photos)

	unsubscribe, err := c.store.Subscribe(ctx, photostore.MostLiked, topSubscribeWindow,
		func(photos []models.Photo) {
			if len(photos) > c.count {
				photos = photos[:c.count]
			}
			c.replace(photos)
		})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Stop tears the live subscription down.
func (c *TopCache) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Refresh re-fetches the ranking immediately, bypassing the subscription.
// Last write wins between a manual refresh and a subscription tick.
func (c *TopCache) Refresh(ctx context.Context) error {
	photos, err := c.store.FetchPage(ctx, photostore.MostLiked, c.count, 0)
	if err != nil {
		return err
	}
	c.replace(photos)
	return nil
}

func (c *TopCache) replace(photos []models.Photo) {
	c.mu.Lock()
	c.snapshot = photos
	c.loading = false
	c.mu.Unlock()
}

// Photos returns the current ranked snapshot, most-liked first.
func (c *TopCache) Photos() []models.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Photo, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Loading reports whether the initial fetch is still in flight.
func (c *TopCache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

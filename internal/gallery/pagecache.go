// Package gallery maintains locally materialized, live-updating views over the
// photo collection: a paginated recent-photos view and a top-liked ranking.
package gallery

import (
	"context"
	"log/slog"
	"sync"

	"picwedding/internal/middleware"
	"picwedding/internal/models"
	"picwedding/internal/photostore"
)

const (
	// eagerWindow is how many records the initial fetch materializes.
	eagerWindow = 100
	// subscribeWindow is the fixed live-subscription window, independent of
	// the page size requested by consumers.
	subscribeWindow = 100
)

// PageCache holds a bounded snapshot of the newest photos and derives stable
// page slices from it. Every remote change replaces the whole snapshot, which
// is also how optimistic like-count edits reconcile with the server value.
type PageCache struct {
	store    photostore.Store
	pageSize int

	mu          sync.RWMutex
	snapshot    []models.Photo
	page        int
	loading     bool
	unsubscribe func()
}

// NewPageCache creates a paginated view cache with the given page size.
func NewPageCache(store photostore.Store, pageSize int) *PageCache {
	return &PageCache{
		store:    store,
		pageSize: pageSize,
		page:     1,
		loading:  true,
	}
}

// Start eagerly fetches the snapshot, then attaches the live subscription.
// An initial fetch failure degrades to an empty, not-loading view; there is
// no retry, the subscription still repairs the view on the next change.
func (c *PageCache) Start(ctx context.Context) error {
	photos, err := c.store.FetchPage(ctx, photostore.NewestFirst, eagerWindow, 0)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "initial photo fetch failed",
			slog.String("error", err.Error()))
		photos = nil
	}
	c.replace(photos)

	unsubscribe, err := c.store.Subscribe(ctx, photostore.NewestFirst, subscribeWindow, c.replace)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Stop tears the live subscription down. The cache must not be updated after
// the consuming view is gone.
func (c *PageCache) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// replace installs a full snapshot; remote state always wins over local edits.
func (c *PageCache) replace(photos []models.Photo) {
	c.mu.Lock()
	c.snapshot = photos
	c.loading = false
	c.mu.Unlock()
}

// Slice returns the records of the half-open range [(page-1)*size, page*size)
// of the current snapshot. Pure with respect to the snapshot.
func (c *PageCache) Slice(page int) []models.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := (page - 1) * c.pageSize
	if start < 0 || start >= len(c.snapshot) {
		return nil
	}
	end := start + c.pageSize
	if end > len(c.snapshot) {
		end = len(c.snapshot)
	}
	out := make([]models.Photo, end-start)
	copy(out, c.snapshot[start:end])
	return out
}

// TotalPages reports ceil(len(snapshot)/pageSize) with a floor of 1.
func (c *PageCache) TotalPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pages := (len(c.snapshot) + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// GoToPage moves the current page. Out-of-range targets are silently ignored;
// a page left dangling by a shrinking snapshot is not auto-corrected.
func (c *PageCache) GoToPage(page int) {
	total := c.TotalPages()
	c.mu.Lock()
	if page >= 1 && page <= total {
		c.page = page
	}
	c.mu.Unlock()
}

// Page returns the current 1-indexed page.
func (c *PageCache) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// PageSize returns the fixed page size of this view.
func (c *PageCache) PageSize() int {
	return c.pageSize
}

// Len returns the number of materialized records.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot)
}

// Loading reports whether the initial fetch is still in flight.
func (c *PageCache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

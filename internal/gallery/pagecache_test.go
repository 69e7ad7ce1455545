package gallery

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"picwedding/internal/models"
	"picwedding/internal/photostore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeStub implements photostore.Store with function fields.
type storeStub struct {
	fetchPageFn func(context.Context, photostore.Order, int, int) ([]models.Photo, error)
	subscribeFn func(context.Context, photostore.Order, int, func([]models.Photo)) (func(), error)
}

func (s *storeStub) FetchPage(ctx context.Context, order photostore.Order, limit, offset int) ([]models.Photo, error) {
	return s.fetchPageFn(ctx, order, limit, offset)
}
func (s *storeStub) Count(context.Context) (int64, error) { return 0, nil }
func (s *storeStub) Create(context.Context, string) (*models.Photo, error) {
	return nil, nil
}
func (s *storeStub) IncrementLikes(context.Context, string, int) error { return nil }
func (s *storeStub) Delete(context.Context, string) error              { return nil }
func (s *storeStub) Subscribe(ctx context.Context, order photostore.Order, limit int, fn func([]models.Photo)) (func(), error) {
	if s.subscribeFn != nil {
		return s.subscribeFn(ctx, order, limit, fn)
	}
	return func() {}, nil
}

func makePhotos(n int) []models.Photo {
	photos := make([]models.Photo, n)
	for i := range photos {
		photos[i] = models.Photo{ID: fmt.Sprintf("photo-%02d", i), Likes: i}
	}
	return photos
}

func startedPageCache(t *testing.T, photos []models.Photo, pageSize int) *PageCache {
	t.Helper()
	stub := &storeStub{
		fetchPageFn: func(_ context.Context, _ photostore.Order, limit, _ int) ([]models.Photo, error) {
			if len(photos) > limit {
				return photos[:limit], nil
			}
			return photos, nil
		},
	}
	c := NewPageCache(stub, pageSize)
	require.NoError(t, c.Start(context.Background()))
	return c
}

func TestPageCache_PaginationWindowing(t *testing.T) {
	c := startedPageCache(t, makePhotos(13), 6)

	assert.Equal(t, 3, c.TotalPages())
	assert.Equal(t, 13, c.Len())
	assert.False(t, c.Loading())

	assert.Len(t, c.Slice(1), 6)
	assert.Len(t, c.Slice(2), 6)
	assert.Len(t, c.Slice(3), 1)
	assert.Nil(t, c.Slice(4))

	// Concatenating all pages reproduces the snapshot in order.
	var all []models.Photo
	for page := 1; page <= c.TotalPages(); page++ {
		all = append(all, c.Slice(page)...)
	}
	require.Len(t, all, 13)
	for i, p := range all {
		assert.Equal(t, fmt.Sprintf("photo-%02d", i), p.ID)
	}
}

func TestPageCache_GoToPageBounds(t *testing.T) {
	c := startedPageCache(t, makePhotos(13), 6)

	assert.Equal(t, 1, c.Page())

	c.GoToPage(3)
	assert.Equal(t, 3, c.Page())

	// Out-of-range targets are silently ignored.
	c.GoToPage(0)
	assert.Equal(t, 3, c.Page())
	c.GoToPage(4)
	assert.Equal(t, 3, c.Page())
}

func TestPageCache_EmptyCollection(t *testing.T) {
	c := startedPageCache(t, nil, 6)

	assert.Equal(t, 1, c.TotalPages())
	assert.Nil(t, c.Slice(1))
}

func TestPageCache_InitialFetchFailureDegrades(t *testing.T) {
	stub := &storeStub{
		fetchPageFn: func(context.Context, photostore.Order, int, int) ([]models.Photo, error) {
			return nil, fmt.Errorf("database down")
		},
	}
	c := NewPageCache(stub, 6)

	require.NoError(t, c.Start(context.Background()))

	// Degrades to an empty, not-loading view instead of failing startup.
	assert.False(t, c.Loading())
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Slice(1))
}

func TestPageCache_SubscriptionReplacesSnapshot(t *testing.T) {
	var mu sync.Mutex
	var deliver func([]models.Photo)

	stub := &storeStub{
		fetchPageFn: func(context.Context, photostore.Order, int, int) ([]models.Photo, error) {
			return makePhotos(3), nil
		},
		subscribeFn: func(_ context.Context, _ photostore.Order, _ int, fn func([]models.Photo)) (func(), error) {
			mu.Lock()
			deliver = fn
			mu.Unlock()
			return func() {}, nil
		},
	}
	c := NewPageCache(stub, 6)
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 3, c.Len())

	// A change tick replaces the whole snapshot; remote state wins.
	mu.Lock()
	deliver(makePhotos(8))
	mu.Unlock()

	assert.Equal(t, 8, c.Len())
	assert.Equal(t, 2, c.TotalPages())
}

func TestPageCache_StopUnsubscribes(t *testing.T) {
	unsubscribed := false
	stub := &storeStub{
		fetchPageFn: func(context.Context, photostore.Order, int, int) ([]models.Photo, error) {
			return makePhotos(2), nil
		},
		subscribeFn: func(context.Context, photostore.Order, int, func([]models.Photo)) (func(), error) {
			return func() { unsubscribed = true }, nil
		},
	}
	c := NewPageCache(stub, 6)
	require.NoError(t, c.Start(context.Background()))

	c.Stop()
	assert.True(t, unsubscribed)

	// Idempotent.
	c.Stop()
}

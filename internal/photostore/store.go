// Package photostore provides the photo record store: ordered range queries,
// atomic like-count increments and a live change feed over the collection.
package photostore

import (
	"context"
	"fmt"
	"log/slog"

	"picwedding/internal/cache"
	"picwedding/internal/middleware"
	"picwedding/internal/models"

	"gorm.io/gorm"
)

// Order selects the ordering key for range queries and subscriptions.
type Order int

const (
	// NewestFirst orders by creation time descending, id descending as tie-break.
	NewestFirst Order = iota
	// MostLiked orders by like count descending, id ascending as tie-break.
	MostLiked
)

func (o Order) clause() string {
	switch o {
	case MostLiked:
		return "likes DESC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// Store defines the record store interface for photos.
type Store interface {
	FetchPage(ctx context.Context, order Order, limit, offset int) ([]models.Photo, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, url string) (*models.Photo, error)
	IncrementLikes(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
	// Subscribe delivers a full snapshot of the first `limit` records in the
	// given order after every change to the collection. The returned function
	// tears the subscription down; callbacks stop after it returns.
	Subscribe(ctx context.Context, order Order, limit int, fn func([]models.Photo)) (func(), error)
}

// gormStore implements Store on top of GORM with a Feed-driven change stream.
type gormStore struct {
	db   *gorm.DB
	feed *Feed
}

// New creates a photo store backed by the given database and change feed.
func New(db *gorm.DB, feed *Feed) Store {
	return &gormStore{db: db, feed: feed}
}

func (s *gormStore) FetchPage(ctx context.Context, order Order, limit, offset int) ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.WithContext(ctx).
		Order(order.clause()).
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, models.NewFetchError(err)
	}
	return photos, nil
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.PhotoCountKey(), &count, cache.PhotoCountTTL, func() error {
		return s.db.WithContext(ctx).Model(&models.Photo{}).Count(&count).Error
	})
	if err != nil {
		return 0, models.NewFetchError(err)
	}
	return count, nil
}

func (s *gormStore) Create(ctx context.Context, url string) (*models.Photo, error) {
	photo := &models.Photo{URL: url}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PhotoCountKey())
	s.feed.Publish(ctx)
	return photo, nil
}

func (s *gormStore) IncrementLikes(ctx context.Context, id string, delta int) error {
	// Atomic increment with a floor of zero; the count is never written from a
	// client-computed value.
	res := s.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta))
	if res.Error != nil {
		return models.NewUpdateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewUpdateError(fmt.Errorf("photo %s not found", id))
	}
	s.feed.Publish(ctx)
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", id)
	if res.Error != nil {
		return models.NewDeleteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("photo", id)
	}
	cache.Invalidate(ctx, cache.PhotoCountKey())
	s.feed.Publish(ctx)
	return nil
}

func (s *gormStore) Subscribe(ctx context.Context, order Order, limit int, fn func([]models.Photo)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	id, ch := s.feed.listen()

	// One goroutine per subscription keeps snapshot delivery ordered for that
	// subscriber; the buffered-1 signal channel coalesces change bursts.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				photos, err := s.FetchPage(ctx, order, limit, 0)
				if err != nil {
					// Keep the previous snapshot; the next change tick re-queries.
					middleware.Logger.WarnContext(ctx, "subscription re-query failed",
						slog.String("error", err.Error()))
					continue
				}
				fn(photos)
			}
		}
	}()

	unsubscribe := func() {
		cancel()
		s.feed.drop(id)
	}
	return unsubscribe, nil
}

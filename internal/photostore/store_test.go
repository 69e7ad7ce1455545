package photostore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"picwedding/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Photo{}))
	return db
}

func setupStore(t *testing.T) Store {
	t.Helper()
	return New(setupTestDB(t), NewFeed(nil))
}

func seedPhoto(t *testing.T, db *gorm.DB, id string, likes int, createdAt time.Time) {
	t.Helper()
	photo := models.Photo{
		ID:        id,
		URL:       "https://example.com/" + id + ".jpg",
		Likes:     likes,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&photo).Error)
}

func TestFetchPage_NewestFirstWithTieBreak(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	base := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "a", 0, base)
	seedPhoto(t, db, "b", 0, base.Add(time.Minute))
	// Same timestamp as "b"; id descending breaks the tie.
	seedPhoto(t, db, "c", 0, base.Add(time.Minute))

	photos, err := s.FetchPage(ctx, NewestFirst, 10, 0)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "c", photos[0].ID)
	assert.Equal(t, "b", photos[1].ID)
	assert.Equal(t, "a", photos[2].ID)
}

func TestFetchPage_MostLikedWithTieBreak(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	now := time.Now()
	seedPhoto(t, db, "b", 5, now)
	seedPhoto(t, db, "a", 5, now)
	seedPhoto(t, db, "c", 9, now)

	photos, err := s.FetchPage(ctx, MostLiked, 10, 0)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "c", photos[0].ID)
	// Equal like counts order by id ascending.
	assert.Equal(t, "a", photos[1].ID)
	assert.Equal(t, "b", photos[2].ID)
}

func TestFetchPage_LimitAndOffset(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	base := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPhoto(t, db, fmt.Sprintf("p%d", i), 0, base.Add(time.Duration(i)*time.Minute))
	}

	photos, err := s.FetchPage(ctx, NewestFirst, 2, 2)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "p2", photos[0].ID)
	assert.Equal(t, "p1", photos[1].ID)
}

func TestCreate_AssignsIDAndZeroLikes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	photo, err := s.Create(ctx, "https://example.com/new.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, 0, photo.Likes)
	assert.Equal(t, "https://example.com/new.jpg", photo.URL)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIncrementLikes_FloorsAtZero(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	seedPhoto(t, db, "a", 1, time.Now())

	require.NoError(t, s.IncrementLikes(ctx, "a", -1))
	require.NoError(t, s.IncrementLikes(ctx, "a", -1))

	var photo models.Photo
	require.NoError(t, db.First(&photo, "id = ?", "a").Error)
	assert.Equal(t, 0, photo.Likes)
}

func TestIncrementLikes_Accumulates(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	seedPhoto(t, db, "a", 0, time.Now())

	require.NoError(t, s.IncrementLikes(ctx, "a", 1))
	require.NoError(t, s.IncrementLikes(ctx, "a", 1))
	require.NoError(t, s.IncrementLikes(ctx, "a", -1))

	var photo models.Photo
	require.NoError(t, db.First(&photo, "id = ?", "a").Error)
	assert.Equal(t, 1, photo.Likes)
}

func TestIncrementLikes_UnknownPhoto(t *testing.T) {
	s := setupStore(t)

	err := s.IncrementLikes(context.Background(), "missing", 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UPDATE_ERROR", appErr.Code)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	seedPhoto(t, db, "a", 0, time.Now())

	require.NoError(t, s.Delete(ctx, "a"))

	err := s.Delete(ctx, "a")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSubscribe_DeliversSnapshotOnChange(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	snapshots := make(chan []models.Photo, 4)
	unsubscribe, err := s.Subscribe(ctx, NewestFirst, 10, func(photos []models.Photo) {
		snapshots <- photos
	})
	require.NoError(t, err)
	defer unsubscribe()

	_, err = s.Create(ctx, "https://example.com/one.jpg")
	require.NoError(t, err)

	select {
	case photos := <-snapshots:
		require.Len(t, photos, 1)
		assert.Equal(t, "https://example.com/one.jpg", photos[0].URL)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered after create")
	}
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	db := setupTestDB(t)
	s := New(db, NewFeed(nil))
	ctx := context.Background()

	snapshots := make(chan []models.Photo, 4)
	unsubscribe, err := s.Subscribe(ctx, NewestFirst, 10, func(photos []models.Photo) {
		snapshots <- photos
	})
	require.NoError(t, err)

	unsubscribe()

	_, err = s.Create(ctx, "https://example.com/one.jpg")
	require.NoError(t, err)

	select {
	case <-snapshots:
		t.Fatal("snapshot delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

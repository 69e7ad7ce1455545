// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"picwedding/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls demo data generation.
type Options struct {
	// Photos is the number of photo records to create.
	Photos int
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
	// MaxLikes caps the random like count per photo.
	MaxLikes int
}

// Seeder builds demo photos and persists them to the database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Photos <= 0 {
		opts.Photos = 30
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 14
	}
	if opts.MaxLikes <= 0 {
		opts.MaxLikes = 25
	}
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes every photo record.
func (s *Seeder) ClearAll() error {
	if err := s.db.Exec("DELETE FROM photos").Error; err != nil {
		return fmt.Errorf("failed to clear photos: %w", err)
	}
	log.Println("Cleared photos table")
	return nil
}

// BuildPhoto constructs a single demo photo without persisting it.
func (s *Seeder) BuildPhoto() *models.Photo {
	daysBack := s.rng.Intn(s.opts.MaxDays)
	hoursBack := s.rng.Intn(24)
	minsBack := s.rng.Intn(60)

	return &models.Photo{
		URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		// Skewed so a few photos dominate the ranking, like a real gallery.
		Likes: s.randomLikes(),
		CreatedAt: time.Now().
			Add(-time.Duration(daysBack)*24*time.Hour -
				time.Duration(hoursBack)*time.Hour -
				time.Duration(minsBack)*time.Minute),
	}
}

// SeedPhotos persists the configured number of demo photos in one batch.
func (s *Seeder) SeedPhotos() ([]models.Photo, error) {
	photos := make([]models.Photo, 0, s.opts.Photos)
	for i := 0; i < s.opts.Photos; i++ {
		photos = append(photos, *s.BuildPhoto())
	}

	if err := s.db.CreateInBatches(photos, 100).Error; err != nil {
		return nil, fmt.Errorf("failed to seed photos: %w", err)
	}
	log.Printf("Seeded %d photos", len(photos))
	return photos, nil
}

func (s *Seeder) randomLikes() int {
	// Square the roll so high counts are rare.
	r := s.rng.Float64()
	return int(r * r * float64(s.opts.MaxLikes))
}

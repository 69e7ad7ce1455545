// Command main runs the database seeder for PicWedding.
package main

import (
	"flag"
	"log"

	"picwedding/internal/config"
	"picwedding/internal/database"
	"picwedding/internal/seed"
)

func main() {
	numPhotos := flag.Int("photos", 30, "Number of photos to create")
	maxLikes := flag.Int("max-likes", 25, "Maximum random like count per photo")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d photos, clean=%v\n", *numPhotos, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		Photos:   *numPhotos,
		MaxLikes: *maxLikes,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.SeedPhotos(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Seeding complete")
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo represents a shared wedding photo.
// The image itself lives on the external host; only the public URL is stored.
type Photo struct {
	ID  string `gorm:"primaryKey;size:36" json:"id"`
	URL string `gorm:"not null" json:"url"`
	// Likes is mutated only through atomic increments, never set from a
	// client-computed value.
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a UUID so the record id is opaque and server-generated.
func (p *Photo) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

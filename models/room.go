package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room maps a human-readable label ("101", "B-204") to its current occupant.
// Occupant is a denormalized display cache kept up to date by the user
// registry; the users table stays authoritative.
type Room struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RoomLabel string    `gorm:"uniqueIndex;not null" json:"roomLabel"`
	Occupant  string    `json:"occupant,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

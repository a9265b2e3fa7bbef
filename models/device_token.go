package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceToken is one registered push target. A user may hold several (phone,
// tablet), but a token belongs to at most one user at a time: registering it
// to another user moves it.
type DeviceToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	Platform  string    `gorm:"size:16" json:"platform,omitempty"` // "android" | "ios"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DeviceToken) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

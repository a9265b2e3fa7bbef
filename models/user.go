package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. A single user table covers everyone who can sign in.
const (
	RoleResident = "resident"
	RoleSecurity = "security"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleResident, RoleSecurity, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:16;default:resident;index" json:"role"`
	Phone     string    `json:"phone,omitempty"`
	RoomID    string    `gorm:"index" json:"roomId,omitempty"` // residents only
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

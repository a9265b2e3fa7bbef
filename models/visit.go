package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visit statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// PhotoList stores visit photo URLs as a JSON array in a text column.
// Early deployments persisted a single bare URL string; Scan still accepts
// that form and hands it back as a one-element list, so readers only ever
// see a list.
type PhotoList []string

func (p PhotoList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*p = PhotoList{}
		return nil
	}
	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("photo list: unsupported column type %T", value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*p = PhotoList{}
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err == nil {
			*p = urls
			return nil
		}
	}
	// legacy single-string form
	*p = PhotoList{raw}
	return nil
}

func (p PhotoList) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// Visit is one visitor check-in against a room. ResidentUserID is a weak
// reference: a bare id resolved into ResidentInfo at read time, never an
// owning association. It is set at creation and never changed.
type Visit struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID         string    `gorm:"index;not null" json:"roomId"`
	RoomLabel      string    `json:"roomLabel"`
	VisitorName    string    `gorm:"not null" json:"visitorName"`
	Purpose        string    `json:"purpose,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Photos         PhotoList `gorm:"type:text" json:"photos"`
	Status         string    `gorm:"size:16;default:pending;index" json:"status"`
	Notified       bool      `gorm:"default:false" json:"notified"`
	ResidentUserID *string   `gorm:"index" json:"-"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ResidentInfo is the read-only projection of a visit's resident returned to
// API callers. Credentials never leave the store.
type ResidentInfo struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	RoomID string `json:"roomId,omitempty"`
	Role   string `json:"role"`
}

// VisitView is the wire shape of a visit: the record plus its joined
// resident projection (null when no resident was resolved).
type VisitView struct {
	Visit
	Resident *ResidentInfo `json:"residentUserId"`
}

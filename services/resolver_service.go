package services

import (
	"errors"

	"backend/config"
	"backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolverService maps a caller-supplied room identifier (a label like
// "101", or an internal room id) to the canonical label and the residents
// living there.
type ResolverService struct {
	db *gorm.DB
}

func NewResolverService(db *gorm.DB) *ResolverService {
	return &ResolverService{db: db}
}

// Resolution is the outcome of a room lookup. Resolution never fails:
// worst case the raw identifier passes through with no residents.
type Resolution struct {
	RoomLabel string
	Residents []models.User
}

// Resolve looks the room up by label first, then by internal id when the
// identifier is well formed. Residents are matched on the raw identifier,
// falling back to the resolved label, and every match is returned since a
// room can house more than one resident.
func (s *ResolverService) Resolve(roomID string) Resolution {
	label := roomID

	var room models.Room
	err := s.db.Where("room_label = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, perr := uuid.Parse(roomID); perr == nil {
			err = s.db.Where("id = ?", roomID).First(&room).Error
		}
	}
	if err == nil {
		label = room.RoomLabel
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		config.Warning("room lookup failed for %q: %v", roomID, err)
	}

	var residents []models.User
	if err := s.db.Where("role = ? AND room_id = ?", models.RoleResident, roomID).Find(&residents).Error; err != nil {
		config.Warning("resident lookup failed for %q: %v", roomID, err)
	}
	if len(residents) == 0 && label != roomID {
		if err := s.db.Where("role = ? AND room_id = ?", models.RoleResident, label).Find(&residents).Error; err != nil {
			config.Warning("resident lookup failed for %q: %v", label, err)
		}
	}

	return Resolution{RoomLabel: label, Residents: residents}
}

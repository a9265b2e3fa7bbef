package services

import (
	"errors"

	"backend/errs"
	"backend/models"

	"gorm.io/gorm"
)

type RoomService struct {
	db *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

func (s *RoomService) CreateRoom(label, occupant string) (*models.Room, error) {
	if label == "" {
		return nil, errs.Validation("roomLabel required")
	}

	var existing models.Room
	if err := s.db.Where("room_label = ?", label).First(&existing).Error; err == nil {
		return nil, errs.Conflict("room exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room := models.Room{RoomLabel: label, Occupant: occupant}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.Order("room_label ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

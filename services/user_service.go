package services

import (
	"errors"
	"strings"

	"backend/config"
	"backend/errs"
	"backend/models"

	"gorm.io/gorm"
)

// UserService is the user registry: residents, security staff and admins
// share one table. It also keeps the rooms' occupant cache in step with
// resident records.
type UserService struct {
	db     *gorm.DB
	push   *PushService
	visits *VisitService
}

func NewUserService(db *gorm.DB, push *PushService, visits *VisitService) *UserService {
	return &UserService{db: db, push: push, visits: visits}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	RoomID   string
	// optional first device token registered at signup
	PushToken string
}

func (s *UserService) CreateUser(in CreateUserInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, errs.Validation("name, email, password and role required")
	}
	if !models.ValidRole(in.Role) {
		return nil, errs.Validation("invalid role %q", in.Role)
	}

	email := strings.ToLower(in.Email)
	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errs.Conflict("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Name:     in.Name,
		Email:    email,
		Password: in.Password,
		Role:     in.Role,
		Phone:    in.Phone,
	}
	if in.Role == models.RoleResident {
		user.RoomID = in.RoomID
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	if user.Role == models.RoleResident && user.RoomID != "" {
		s.upsertRoomOccupant(user.RoomID, user.Name)
	}

	if in.PushToken != "" {
		if _, err := s.push.RegisterToken(user.ID, in.PushToken, ""); err != nil {
			config.Warning("initial token registration failed for %s: %v", user.Email, err)
		}
	}

	return &user, nil
}

// upsertRoomOccupant creates the room on first sight of a resident or
// refreshes its occupant display name. Best effort: the occupant column is
// a cache, the users table stays authoritative.
func (s *UserService) upsertRoomOccupant(roomLabel, occupant string) {
	var room models.Room
	err := s.db.Where("room_label = ?", roomLabel).First(&room).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&models.Room{RoomLabel: roomLabel, Occupant: occupant}).Error; err != nil {
			config.Warning("room upsert failed for %q: %v", roomLabel, err)
		}
	case err != nil:
		config.Warning("room lookup failed for %q: %v", roomLabel, err)
	default:
		if err := s.db.Model(&room).Update("occupant", occupant).Error; err != nil {
			config.Warning("room occupant update failed for %q: %v", roomLabel, err)
		}
	}
}

// Login checks plain credentials and returns the user, or nil when they do
// not match. The API is deliberately tokenless.
func (s *UserService) Login(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, errs.Validation("email and password required")
	}
	var user models.User
	err := s.db.Where("email = ? AND password = ?", strings.ToLower(email), password).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users newest first, optionally filtered by role.
func (s *UserService) ListUsers(role string) ([]models.User, error) {
	tx := s.db.Order("created_at DESC")
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	var users []models.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SavePushToken registers a device token against the user found by email
// or, failing that, by room id.
func (s *UserService) SavePushToken(email, roomID, token string) (*models.User, error) {
	if email == "" && roomID == "" {
		return nil, errs.Validation("email or roomId required")
	}

	var user models.User
	var err error
	if email != "" {
		err = s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	} else {
		err = s.db.Where("room_id = ?", roomID).First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.push.RegisterToken(user.ID, token, ""); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user, clears their room's occupant cache, drops
// their device tokens, and, when deleteVisits is set, cascades to every
// visit owned by them. Returns how many visits went with them.
func (s *UserService) DeleteUser(id string, deleteVisits bool) (int64, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errs.NotFound("user")
		}
		return 0, err
	}

	if user.Role == models.RoleResident && user.RoomID != "" {
		if err := s.db.Model(&models.Room{}).Where("room_label = ?", user.RoomID).
			Update("occupant", "").Error; err != nil {
			config.Warning("occupant cleanup failed for %q: %v", user.RoomID, err)
		}
	}

	var visitsDeleted int64
	if deleteVisits {
		n, err := s.visits.DeleteByResident(user.ID)
		if err != nil {
			return 0, err
		}
		visitsDeleted = n
	}

	if err := s.db.Where("user_id = ?", user.ID).Delete(&models.DeviceToken{}).Error; err != nil {
		config.Warning("token cleanup failed for %s: %v", user.ID, err)
	}

	if err := s.db.Delete(&user).Error; err != nil {
		return visitsDeleted, err
	}
	return visitsDeleted, nil
}

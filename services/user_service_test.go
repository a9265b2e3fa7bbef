package services

import (
	"testing"

	"backend/errs"
	"backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := newTestDB(t)
	push := NewPushService(db, &fakeTransport{})
	visits := NewVisitService(db, NewResolverService(db), push, nil, nil)
	return NewUserService(db, push, visits), db
}

func TestCreateUserUpsertsRoom(t *testing.T) {
	svc, db := newUserService(t)

	user, err := svc.CreateUser(CreateUserInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "pw",
		Role: models.RoleResident, RoomID: "101",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email, "emails are stored lowercased")

	var room models.Room
	require.NoError(t, db.Where("room_label = ?", "101").First(&room).Error)
	require.Equal(t, "Alice", room.Occupant)

	// a second resident of the same room replaces the occupant cache
	_, err = svc.CreateUser(CreateUserInput{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
		Role: models.RoleResident, RoomID: "101",
	})
	require.NoError(t, err)
	require.NoError(t, db.Where("room_label = ?", "101").First(&room).Error)
	require.Equal(t, "Bob", room.Occupant)
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.CreateUser(CreateUserInput{Name: "B", Email: "A@example.com", Password: "pw", Role: models.RoleAdmin})
	require.True(t, errs.IsConflict(err))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: "janitor"})
	require.True(t, errs.IsValidation(err))
}

func TestLoginPlainCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleSecurity})
	require.NoError(t, err)

	user, err := svc.Login("a@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, user)

	user, err = svc.Login("a@example.com", "wrong")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestRegisterTokenMovesBetweenUsers(t *testing.T) {
	svc, db := newUserService(t)
	a, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleResident, RoomID: "101"})
	require.NoError(t, err)
	b, err := svc.CreateUser(CreateUserInput{Name: "B", Email: "b@example.com", Password: "pw", Role: models.RoleResident, RoomID: "102"})
	require.NoError(t, err)

	_, err = svc.SavePushToken("a@example.com", "", "shared-token")
	require.NoError(t, err)
	_, err = svc.SavePushToken("b@example.com", "", "shared-token")
	require.NoError(t, err)

	var rows []models.DeviceToken
	require.NoError(t, db.Where("token = ?", "shared-token").Find(&rows).Error)
	require.Len(t, rows, 1, "a token belongs to at most one user")
	require.Equal(t, b.ID, rows[0].UserID)

	// and it is gone from user A's device set
	var countA int64
	require.NoError(t, db.Model(&models.DeviceToken{}).Where("user_id = ?", a.ID).Count(&countA).Error)
	require.Zero(t, countA)
}

func TestSavePushTokenByRoomID(t *testing.T) {
	svc, db := newUserService(t)
	a, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleResident, RoomID: "101"})
	require.NoError(t, err)

	user, err := svc.SavePushToken("", "101", "tok-1")
	require.NoError(t, err)
	require.Equal(t, a.ID, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.DeviceToken{}).Where("user_id = ?", a.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSavePushTokenUnknownUser(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.SavePushToken("ghost@example.com", "", "tok")
	require.True(t, errs.IsNotFound(err))

	_, err = svc.SavePushToken("", "", "tok")
	require.True(t, errs.IsValidation(err))
}

func TestDeleteUserCascades(t *testing.T) {
	svc, db := newUserService(t)
	a, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleResident, RoomID: "101", PushToken: "tok-1"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Visit{
			RoomID: "101", RoomLabel: "101", VisitorName: "V",
			Status: models.StatusPending, ResidentUserID: &a.ID,
		}).Error)
	}

	visitsDeleted, err := svc.DeleteUser(a.ID, true)
	require.NoError(t, err)
	require.Equal(t, int64(2), visitsDeleted)

	var users, visits, tokens int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Visit{}).Count(&visits).Error)
	require.NoError(t, db.Model(&models.DeviceToken{}).Count(&tokens).Error)
	require.Zero(t, users)
	require.Zero(t, visits)
	require.Zero(t, tokens)

	var room models.Room
	require.NoError(t, db.Where("room_label = ?", "101").First(&room).Error)
	require.Empty(t, room.Occupant, "occupant cache cleared")
}

func TestDeleteUserKeepsVisitsWithoutFlag(t *testing.T) {
	svc, db := newUserService(t)
	a, err := svc.CreateUser(CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: models.RoleResident, RoomID: "101"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Visit{
		RoomID: "101", RoomLabel: "101", VisitorName: "V",
		Status: models.StatusPending, ResidentUserID: &a.ID,
	}).Error)

	visitsDeleted, err := svc.DeleteUser(a.ID, false)
	require.NoError(t, err)
	require.Zero(t, visitsDeleted)

	var visits int64
	require.NoError(t, db.Model(&models.Visit{}).Count(&visits).Error)
	require.Equal(t, int64(1), visits)
}

func TestDeleteUnknownUser(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.DeleteUser("no-such-user", true)
	require.True(t, errs.IsNotFound(err))
}

package services

import (
	"fmt"
	"strings"
	"testing"

	"backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database migrated with the full
// schema. Named per test so parallel suites never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DeviceToken{},
		&models.Room{},
		&models.Visit{},
	))
	return db
}

func createResident(t *testing.T, db *gorm.DB, roomID string, tokens ...string) models.User {
	t.Helper()

	user := models.User{
		Name:     "Resident " + roomID,
		Email:    fmt.Sprintf("resident-%s@example.com", uuid.NewString()),
		Password: "secret",
		Role:     models.RoleResident,
		RoomID:   roomID,
	}
	require.NoError(t, db.Create(&user).Error)
	for _, tok := range tokens {
		require.NoError(t, db.Create(&models.DeviceToken{UserID: user.ID, Token: tok}).Error)
	}
	return user
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookmarket/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{})
	return db
}

func TestBootstrap(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)

	assert.NoError(t, service.Bootstrap("bootpass"))

	var admin models.User
	assert.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Second run is a no-op.
	assert.NoError(t, service.Bootstrap("otherpass"))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBootstrap_NoPassword(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)

	assert.NoError(t, service.Bootstrap(""))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogin(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)
	service.Bootstrap("bootpass")

	user, err := service.Login("admin", "bootpass")
	assert.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = service.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("ghost", "bootpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)

	assert.NoError(t, service.CreateUser("alice", "pw123", models.RoleUser))

	user, err := service.Login("alice", "pw123")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	assert.ErrorIs(t, service.CreateUser("alice", "other", models.RoleUser), ErrUsernameTaken)
}

func TestCreateUser_UnknownRoleDowngraded(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)

	assert.NoError(t, service.CreateUser("bob", "pw123", "superuser"))

	var user models.User
	db.Where("username = ?", "bob").First(&user)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)
	service.CreateUser("alice", "oldpw", models.RoleUser)

	user, _ := service.Login("alice", "oldpw")

	assert.ErrorIs(t, service.ChangePassword(user.ID, "wrong", "newpw"), ErrWrongPassword)

	assert.NoError(t, service.ChangePassword(user.ID, "oldpw", "newpw"))

	_, err := service.Login("alice", "oldpw")
	assert.Error(t, err)
	_, err = service.Login("alice", "newpw")
	assert.NoError(t, err)
}

func TestChangeAdminPassword(t *testing.T) {
	db := setupTestDB()
	service := NewService(db)
	service.Bootstrap("bootpass")

	assert.NoError(t, service.ChangeAdminPassword("rotated"))

	_, err := service.Login("admin", "bootpass")
	assert.Error(t, err)
	_, err = service.Login("admin", "rotated")
	assert.NoError(t, err)
}

// Package auth owns users and credentials. The page/link store never sees
// credentials; admin handlers only ask whether a session carries a user.
package auth

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookmarket/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Bootstrap creates the initial admin and user accounts when the user table is
// empty. The admin password comes from configuration; a blank one keeps the
// account disabled until configured.
func (s *Service) Bootstrap(adminPassword string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if adminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	hash, err := hashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := models.User{Username: "admin", PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Bootstrapped admin account")
	return nil
}

// Login checks the credentials and returns the matching user.
func (s *Service) Login(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *Service) FindByID(id int) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser adds an account with the given role. Duplicate usernames are
// rejected.
func (s *Service) CreateUser(username, password, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		role = models.RoleUser
	}

	var existing models.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return ErrUsernameTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{Username: username, PasswordHash: hash, Role: role}
	return s.db.Create(&user).Error
}

// ChangePassword replaces the user's password after verifying the old one.
func (s *Service) ChangePassword(userID int, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}

	if !checkPasswordHash(oldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.db.Save(&user).Error
}

// ChangeAdminPassword resets the admin account's password. Only admins may
// call it; the handler enforces the role.
func (s *Service) ChangeAdminPassword(newPassword string) error {
	var admin models.User
	if err := s.db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	admin.PasswordHash = hash
	return s.db.Save(&admin).Error
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

package models

import "time"

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null;index" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Role         string `gorm:"not null;default:'user'" json:"role"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// KVEntry is the durable key-value substrate the page and link collections are
// serialized into. One row per storage key, the value holds a full JSON blob.
type KVEntry struct {
	ID        uint      `gorm:"primary_key"`
	Key       string    `gorm:"unique;not null;index" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

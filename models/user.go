package models

import (
	"time"
)

// Role names seeded at startup.
const (
	RoleAdministrator = "administrator"
	RoleUser          = "user"
)

// User model. Usernames, emails and phone numbers are unique.
type User struct {
	ID             string     `gorm:"primaryKey;size:50" json:"id"`
	Username       string     `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber    string     `gorm:"size:32;not null;uniqueIndex" json:"phone_number"`
	IsHost         bool       `gorm:"not null;default:false" json:"is_host"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	RoleID         *uint      `gorm:"index" json:"role_id,omitempty"`
	Role           *Role      `gorm:"foreignKey:RoleID;references:ID" json:"role,omitempty"`
	Photo          *UserPhoto `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photo,omitempty"`
	CreatedBy      string     `gorm:"size:255" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedBy      string     `gorm:"size:255" json:"updated_by"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

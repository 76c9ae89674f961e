package models

import "time"

// UserPhoto holds a user's profile image as a data URI. One row per user,
// overwritten in place.
type UserPhoto struct {
	ID        string    `gorm:"primaryKey;size:50" json:"id"`
	UserID    string    `gorm:"size:50;not null;uniqueIndex" json:"user_id"`
	Image     string    `gorm:"type:text" json:"image"`
	CreatedBy string    `gorm:"size:255" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedBy string    `gorm:"size:255" json:"updated_by"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

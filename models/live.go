package models

import "time"

const (
	LiveStatusLive  = "live"
	LiveStatusEnded = "ended"
)

// LiveStream is a status row for one broadcast session. LiveID is the
// client-chosen room id.
type LiveStream struct {
	ID        string     `gorm:"primaryKey;size:50" json:"id"`
	UserID    string     `gorm:"size:50;not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	LiveID    string     `gorm:"size:255;index" json:"live_id"`
	Username  string     `gorm:"size:255" json:"username"`
	Status    string     `gorm:"size:10;not null;index" json:"status"`
	StartedAt *time.Time `gorm:"index" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LiveViewer is one viewing session; LeftAt is nil while the viewer is in.
type LiveViewer struct {
	ID       string      `gorm:"primaryKey;size:50" json:"id"`
	UserID   string      `gorm:"size:50;not null;index" json:"user_id"`
	User     *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	LiveID   string      `gorm:"size:50;not null;index" json:"live_id"`
	Live     *LiveStream `gorm:"foreignKey:LiveID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	JoinedAt time.Time   `json:"joined_at"`
	LeftAt   *time.Time  `json:"left_at"`
}

package models

import "time"

type GuestSession struct {
	ID        string    `gorm:"size:64;primaryKey"     json:"guest_id"`
	IPAddress string    `gorm:"size:64"                json:"-"`
	UserAgent string    `gorm:"size:512"               json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index"         json:"expires_at"`
}

func (s *GuestSession) ValidAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

func (GuestSession) TableName() string { return "guest_sessions" }

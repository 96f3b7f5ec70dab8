package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"           json:"user_id,omitempty"`
	GuestID   *string    `gorm:"size:64;index"             json:"guest_id,omitempty"`
	Action    string     `gorm:"size:64;not null;index"    json:"action"`
	Data      string     `gorm:"type:text"                 json:"data"`
	CreatedAt time.Time  `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

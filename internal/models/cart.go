package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartLine struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"                                                    json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_line;check:chk_cart_lines_owner,(user_id IS NULL) <> (guest_id IS NULL)" json:"user_id,omitempty"`
	GuestID   *string    `gorm:"size:64;uniqueIndex:idx_cart_guest_line"                                 json:"guest_id,omitempty"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_line;uniqueIndex:idx_cart_guest_line" json:"product_id"`
	Variant   Variant    `gorm:"size:16;not null;uniqueIndex:idx_cart_user_line;uniqueIndex:idx_cart_guest_line"   json:"variant"`
	Quantity  int        `gorm:"not null;default:1;check:chk_cart_lines_quantity,quantity >= 1"          json:"quantity"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (l *CartLine) Owner() Owner {
	return Owner{UserID: l.UserID, GuestID: l.GuestID}
}

func (l *CartLine) SetOwner(o Owner) {
	l.UserID, l.GuestID = o.UserID, o.GuestID
}

func (l *CartLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if !l.Owner().Valid() {
		return ErrOwnerExclusive
	}
	return nil
}

func (CartLine) TableName() string { return "cart_lines" }

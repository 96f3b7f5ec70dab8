package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Favorite struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"                                 json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_fav_user_product;check:chk_favorites_owner,(user_id IS NULL) <> (guest_id IS NULL)" json:"user_id,omitempty"`
	GuestID   *string    `gorm:"size:64;uniqueIndex:idx_fav_guest_product"            json:"guest_id,omitempty"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_fav_user_product;uniqueIndex:idx_fav_guest_product" json:"product_id"`
	CreatedAt time.Time  `json:"created_at"`
}

func (f *Favorite) Owner() Owner {
	return Owner{UserID: f.UserID, GuestID: f.GuestID}
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if !f.Owner().Valid() {
		return ErrOwnerExclusive
	}
	return nil
}

func (Favorite) TableName() string { return "favorites" }

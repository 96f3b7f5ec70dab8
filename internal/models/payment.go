package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusWaitingForCapture PaymentStatus = "waiting_for_capture"
	PaymentStatusSucceeded         PaymentStatus = "succeeded"
	PaymentStatusCanceled          PaymentStatus = "canceled"
	PaymentStatusRefunded          PaymentStatus = "refunded"
)

// Payment mirrors a provider-side payment; rows are keyed by ProviderPaymentID.
type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"               json:"id"`
	ProviderPaymentID string          `gorm:"size:128;uniqueIndex;not null"      json:"provider_payment_id"`
	OrderID           *uuid.UUID      `gorm:"type:uuid;index"                    json:"order_id,omitempty"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index;check:chk_payments_owner,(user_id IS NULL) <> (guest_id IS NULL)" json:"user_id,omitempty"`
	GuestID           *string         `gorm:"size:64;index"                      json:"guest_id,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null"        json:"amount"`
	Currency          string          `gorm:"size:3;not null"                    json:"currency"`
	Status            PaymentStatus   `gorm:"size:32;not null"                   json:"status"`
	Paid              bool            `gorm:"not null;default:false"             json:"paid"`
	Description       string          `gorm:"size:255"                           json:"description,omitempty"`
	ConfirmationURL   string          `gorm:"size:1024"                          json:"confirmation_url,omitempty"`
	Metadata          string          `gorm:"type:text"                          json:"metadata,omitempty"`
	Test              bool            `gorm:"not null;default:false"             json:"test"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *Payment) Owner() Owner {
	return Owner{UserID: p.UserID, GuestID: p.GuestID}
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if !p.Owner().Valid() {
		return ErrOwnerExclusive
	}
	return nil
}

func (Payment) TableName() string { return "payments" }

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&Product{}, &ProductImage{},
		&GuestSession{},
		&CartLine{}, &Favorite{},
		&Order{}, &OrderLine{},
		&Payment{},
		&AuditLog{},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "Created"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// forward path position; Cancelled is off the path.
var statusRank = map[OrderStatus]int{
	OrderStatusCreated:    1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusCreated || s == OrderStatusProcessing
}

// CanAdvanceTo reports whether to lies strictly ahead of s on the
// Created -> Processing -> Shipped -> Delivered path.
func (s OrderStatus) CanAdvanceTo(to OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	dst, ok := statusRank[to]
	return ok && dst > from
}

type Order struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	UserID       *uuid.UUID      `gorm:"type:uuid;index;check:chk_orders_owner,(user_id IS NULL) <> (guest_id IS NULL)" json:"user_id,omitempty"`
	GuestID      *string         `gorm:"size:64;index"                        json:"guest_id,omitempty"`
	ContactEmail string          `gorm:"size:255;index"                       json:"contact_email,omitempty"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"          json:"total_price"`
	Status       OrderStatus     `gorm:"size:20;not null;index"               json:"status"`
	Lines        []OrderLine     `gorm:"foreignKey:OrderID"                   json:"lines"`
	CreatedAt    time.Time       `gorm:"index"                                json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                                 json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"                             json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"                                   json:"product_id"`
	ProductName string          `gorm:"size:255"                                             json:"product_name"`
	Variant     Variant         `gorm:"size:16;not null"                                     json:"variant"`
	Quantity    int             `gorm:"not null;check:chk_order_lines_quantity,quantity >= 1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"                          json:"price"`
}

func (o *Order) Owner() Owner {
	return Owner{UserID: o.UserID, GuestID: o.GuestID}
}

func (o *Order) SetOwner(ow Owner) {
	o.UserID, o.GuestID = ow.UserID, ow.GuestID
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if !o.Owner().Valid() {
		return ErrOwnerExclusive
	}
	return nil
}

func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (Order) TableName() string { return "orders" }
func (OrderLine) TableName() string { return "order_lines" }

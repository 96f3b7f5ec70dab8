package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/internal/catalog"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/util"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Variant   string    `json:"variant"`
	Quantity  int       `json:"quantity"`
}

func (r AddCartItemRequest) Validate() error {
	if r.ProductID == uuid.Nil {
		return errors.New("productId required")
	}
	if !models.Variant(r.Variant).Valid() {
		return errors.New("variant must be cutting or seedling")
	}
	if r.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (r UpdateCartItemRequest) Validate() error {
	if r.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}

type CreateOrderRequest struct {
	ContactEmail string `json:"contactEmail"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateOrderStatusRequest) Validate() error {
	if !models.OrderStatus(r.Status).Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}

type FavoriteRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

type CreatePaymentRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

// PaymentNotification is the provider webhook body.
type PaymentNotification struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Paid   bool   `json:"paid"`
		Amount struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"amount"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

func (n PaymentNotification) Callback() service.PaymentCallback {
	return service.PaymentCallback{
		ProviderPaymentID: n.Object.ID,
		Event:             n.Event,
		Paid:              n.Object.Paid,
		Amount:            n.Object.Amount.Value,
		Currency:          n.Object.Amount.Currency,
		Metadata:          n.Object.Metadata,
	}
}

type CartLineResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url,omitempty"`
	Attributes string    `json:"attributes,omitempty"`
	Variant    string    `json:"variant"`
	Quantity   int       `json:"quantity"`
	Available  bool      `json:"available"`
	UnitPrice  *string   `json:"unit_price"`
	Subtotal   *string   `json:"subtotal"`
}

type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
	TotalItems int                `json:"total_items"`
}

func NewCartResponse(v *service.CartView) CartResponse {
	out := CartResponse{
		Items:      make([]CartLineResponse, 0, len(v.Lines)),
		TotalPrice: v.TotalPrice.StringFixed(2),
		TotalItems: v.TotalItems,
	}
	for _, l := range v.Lines {
		item := CartLineResponse{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Name:       l.Product.Name,
			ImageURL:   l.Product.ImageURL,
			Attributes: l.Product.Attributes,
			Variant:    string(l.Variant),
			Quantity:   l.Quantity,
			Available:  l.Available,
		}
		if l.Available {
			unit, sub := l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2)
			item.UnitPrice, item.Subtotal = &unit, &sub
		}
		out.Items = append(out.Items, item)
	}
	return out
}

type OrderLineResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Variant     string    `json:"variant"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price"`
	Subtotal    string    `json:"subtotal"`
}

type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       *uuid.UUID          `json:"user_id,omitempty"`
	GuestID      *string             `json:"guest_id,omitempty"`
	ContactEmail string              `json:"contact_email,omitempty"`
	Status       string              `json:"status"`
	TotalPrice   string              `json:"total_price"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	out := OrderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		GuestID:      o.GuestID,
		ContactEmail: o.ContactEmail,
		Status:       string(o.Status),
		TotalPrice:   o.TotalPrice.StringFixed(2),
		Lines:        make([]OrderLineResponse, 0, len(o.Lines)),
		CreatedAt:    o.CreatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Variant:     string(l.Variant),
			Quantity:    l.Quantity,
			Price:       l.Price.StringFixed(2),
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return out
}

func NewOrderList(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = NewOrderResponse(&orders[i])
	}
	return out
}

type PaymentResponse struct {
	PaymentID       string     `json:"payment_id"`
	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	Status          string     `json:"status"`
	Paid            bool       `json:"paid"`
	Amount          string     `json:"amount"`
	Currency        string     `json:"currency"`
	ConfirmationURL string     `json:"confirmation_url,omitempty"`
}

func NewPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:       p.ProviderPaymentID,
		OrderID:         p.OrderID,
		Status:          string(p.Status),
		Paid:            p.Paid,
		Amount:          p.Amount.StringFixed(2),
		Currency:        p.Currency,
		ConfirmationURL: p.ConfirmationURL,
	}
}

type FavoriteResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	AddedAt   time.Time       `json:"added_at"`
	Product   catalog.Display `json:"product"`
}

func NewFavoriteList(views []service.FavoriteView) []FavoriteResponse {
	out := make([]FavoriteResponse, len(views))
	for i, v := range views {
		out[i] = FavoriteResponse{ProductID: v.ProductID, AddedAt: v.AddedAt, Product: v.Product}
	}
	return out
}

type GuestSessionResponse struct {
	GuestID   string    `json:"guest_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Page[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}

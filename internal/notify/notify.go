package notify

import (
	"context"
	"time"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/pkg/events"
)

// Notifier is the email collaborator. Callers treat every error as
// best-effort and never fail the primary operation on it.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus) error
}

// EmailRequest is consumed by the mail worker, which resolves user ids to
// addresses and renders templates.
type EmailRequest struct {
	Type        string    `json:"type"`
	From        string    `json:"from"`
	To          string    `json:"to,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	PrevStatus  string    `json:"prev_status,omitempty"`
	TotalPrice  string    `json:"total_price"`
	RequestedAt time.Time `json:"requested_at"`
}

type EmailNotifier struct {
	Pub  events.Publisher
	From string
}

func (n *EmailNotifier) OrderCreated(ctx context.Context, order *models.Order) error {
	return n.send(ctx, "order_created_email", order, "")
}

func (n *EmailNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	return n.send(ctx, "order_status_email", order, from)
}

func (n *EmailNotifier) send(ctx context.Context, typ string, order *models.Order, prev models.OrderStatus) error {
	if n.From == "" {
		return nil
	}
	req := EmailRequest{
		Type:        typ,
		From:        n.From,
		To:          order.ContactEmail,
		OrderID:     order.ID.String(),
		Status:      string(order.Status),
		PrevStatus:  string(prev),
		TotalPrice:  order.TotalPrice.StringFixed(2),
		RequestedAt: time.Now().UTC(),
	}
	if order.UserID != nil {
		req.UserID = order.UserID.String()
	}
	return n.Pub.Publish(ctx, events.TopicNotify, order.ID.String(), req)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) OrderCreated(context.Context, *models.Order) error { return nil }
func (Nop) OrderStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

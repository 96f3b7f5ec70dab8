package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/plant_shop/internal/access"
	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/notify"
	"github.com/Skotchmaster/plant_shop/internal/pricing"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
	"github.com/Skotchmaster/plant_shop/pkg/metrics"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier notify.Notifier
	Events   events.Publisher
	Metrics  *metrics.ServerMetrics
}

type OrderListFilter struct {
	UserID *uuid.UUID
	Status models.OrderStatus
	Asc    bool
	Offset int
	Limit  int
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: invalid contact email", ErrValidation)
	}
	return strings.ToLower(addr.Address), nil
}

// CreateOrder drains the actor's cart into a new order with snapshotted
// prices. Either the order, its lines and the emptied cart all commit, or
// nothing changes.
func (s *OrderService) CreateOrder(ctx context.Context, a actor.Actor, contactEmail string) (*models.Order, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(contactEmail)
	if err != nil {
		return nil, err
	}
	if email == "" && a.IsUser() {
		email = strings.ToLower(strings.TrimSpace(a.Email()))
	}
	if owner.IsGuest() && email == "" {
		return nil, fmt.Errorf("%w: contact email required for guest checkout", ErrValidation)
	}

	var order *models.Order
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.CartLinesForUpdate(ctx, owner)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart empty", ErrValidation)
		}

		items := make([]pricing.Item, len(lines))
		for i, l := range lines {
			items[i] = pricing.Item{ProductID: l.ProductID, Variant: l.Variant}
		}
		quotes, err := pricing.NewResolver(tx).Quote(ctx, items)
		if err != nil {
			var le *pricing.LookupError
			if errors.As(err, &le) {
				return fmt.Errorf("%w: %s", ErrValidation, le.Error())
			}
			return err
		}

		total := decimal.Zero
		orderLines := make([]models.OrderLine, len(lines))
		for i, l := range lines {
			orderLines[i] = models.OrderLine{
				ProductID:   l.ProductID,
				ProductName: quotes[i].ProductName,
				Variant:     l.Variant,
				Quantity:    l.Quantity,
				Price:       quotes[i].UnitPrice,
			}
			total = total.Add(orderLines[i].Subtotal())
		}

		order = &models.Order{
			ContactEmail: email,
			TotalPrice:   total,
			Status:       models.OrderStatusCreated,
			Lines:        orderLines,
		}
		order.SetOwner(owner)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(lines))
		for i, l := range lines {
			ids[i] = l.ID
		}
		_, err = tx.DeleteCartLines(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := afterCommit(ctx)
	defer cancel()

	l := logging.FromContext(ctx)
	l.Info("order_created", "order_id", order.ID, "owner", owner.String(), "total", order.TotalPrice.StringFixed(2))
	if s.Metrics != nil {
		s.Metrics.OrdersCreated.Inc()
	}
	audit(ctx, s.Repo, owner, "order_created", map[string]any{
		"order_id": order.ID, "total_price": order.TotalPrice.StringFixed(2), "lines": len(order.Lines),
	})
	if s.Notifier != nil {
		if err := s.Notifier.OrderCreated(ctx, order); err != nil {
			l.Warn("order_created_notify_failed", "order_id", order.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type": "order_created", "order_id": order.ID, "owner": owner.String(),
		"total_price": order.TotalPrice.StringFixed(2), "status": order.Status,
	})

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, a actor.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !access.CanAccess(a, order.Owner(), access.Read) {
		return nil, fmt.Errorf("%w: order belongs to another owner", ErrForbidden)
	}
	return order, nil
}

// ListMine pages through the actor's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, a actor.Actor, offset, limit int) ([]models.Order, int64, error) {
	owner, err := ownerOf(a)
	if err != nil {
		return nil, 0, err
	}
	return s.Repo.ListOrders(ctx, repo.OrderFilter{Owner: &owner, Offset: offset, Limit: limit})
}

func (s *OrderService) ListAll(ctx context.Context, a actor.Actor, f OrderListFilter) ([]models.Order, int64, error) {
	if !a.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	return s.Repo.ListOrders(ctx, repo.OrderFilter{
		UserID: f.UserID,
		Status: f.Status,
		Asc:    f.Asc,
		Offset: f.Offset,
		Limit:  f.Limit,
	})
}

// LinkGuestOrders attaches guest orders placed with the user's verified email
// to the user's account.
func (s *OrderService) LinkGuestOrders(ctx context.Context, a actor.Actor) (int64, error) {
	if !a.IsUser() {
		return 0, fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	email := strings.TrimSpace(a.Email())
	if email == "" {
		return 0, fmt.Errorf("%w: account has no email", ErrValidation)
	}

	n, err := s.Repo.LinkGuestOrders(ctx, email, a.UserID())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.FromContext(ctx).Info("guest_orders_linked", "user_id", a.UserID(), "count", n)
		audit(ctx, s.Repo, models.UserOwner(a.UserID()), "guest_orders_linked", map[string]any{"count": n})
	}
	return n, nil
}

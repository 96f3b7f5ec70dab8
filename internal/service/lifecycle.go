package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/internal/access"
	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

// CancelOrder moves a Created or Processing order to Cancelled. Only the
// owner may cancel; an already cancelled order is returned unchanged.
func (s *OrderService) CancelOrder(ctx context.Context, a actor.Actor, id uuid.UUID) (*models.Order, error) {
	var (
		from    models.OrderStatus
		changed bool
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.OrderByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if !access.CanAccess(a, order.Owner(), access.Mutate) {
			return fmt.Errorf("%w: order belongs to another owner", ErrForbidden)
		}
		from = order.Status
		if from == models.OrderStatusCancelled {
			return nil
		}
		if !from.Cancellable() {
			return fmt.Errorf("%w: cannot cancel in current status %s", ErrValidation, from)
		}
		changed = true
		return tx.SetOrderStatus(ctx, id, models.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		if s.Metrics != nil {
			s.Metrics.OrdersCancelled.Inc()
		}
		s.afterTransition(ctx, order, from, "order_cancelled")
	}
	return order, nil
}

// AdvanceStatus moves an order forward along Created -> Processing ->
// Shipped -> Delivered. Admin only; repeating the current status is a no-op.
func (s *OrderService) AdvanceStatus(ctx context.Context, a actor.Actor, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !a.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	if to == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: use cancel to cancel an order", ErrValidation)
	}

	var (
		from    models.OrderStatus
		changed bool
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		from, changed, err = advance(ctx, tx, id, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterTransition(ctx, order, from, "order_status_changed")
	}
	return order, nil
}

// advance runs inside the caller's transaction.
func advance(ctx context.Context, tx *repo.GormRepo, id uuid.UUID, to models.OrderStatus) (models.OrderStatus, bool, error) {
	order, err := tx.OrderByIDForUpdate(ctx, id)
	if err != nil {
		return "", false, notFound(err, "order")
	}
	if order.Status == to {
		return order.Status, false, nil
	}
	if !order.Status.CanAdvanceTo(to) {
		return order.Status, false, fmt.Errorf("%w: cannot move order from %s to %s", ErrValidation, order.Status, to)
	}
	if err := tx.SetOrderStatus(ctx, id, to); err != nil {
		return order.Status, false, err
	}
	return order.Status, true, nil
}

func (s *OrderService) afterTransition(ctx context.Context, order *models.Order, from models.OrderStatus, action string) {
	ctx, cancel := afterCommit(ctx)
	defer cancel()

	l := logging.FromContext(ctx)
	l.Info(action, "order_id", order.ID, "from", from, "to", order.Status)

	audit(ctx, s.Repo, order.Owner(), action, map[string]any{
		"order_id": order.ID, "from": from, "to": order.Status,
	})
	if s.Notifier != nil {
		if err := s.Notifier.OrderStatusChanged(ctx, order, from); err != nil {
			l.Warn("order_status_notify_failed", "order_id", order.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type": action, "order_id": order.ID, "from": from, "to": order.Status,
	})
}

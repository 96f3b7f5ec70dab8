package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/plant_shop/internal/access"
	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/notify"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
	"github.com/Skotchmaster/plant_shop/pkg/metrics"
	"github.com/Skotchmaster/plant_shop/pkg/paymentclient"
)

type PaymentProvider interface {
	CreatePayment(ctx context.Context, idempotenceKey string, in paymentclient.CreatePaymentRequest) (*paymentclient.Payment, error)
}

type PaymentService struct {
	Repo      *repo.GormRepo
	Provider  PaymentProvider
	ReturnURL string
	Currency  string
	// AdvanceOrders moves a Created order to Processing once its payment succeeds.
	AdvanceOrders bool
	Notifier      notify.Notifier
	Events        events.Publisher
	Metrics       *metrics.ServerMetrics
	Now           func() time.Time
}

// PaymentCallback is a provider notification reduced to the fields we keep.
type PaymentCallback struct {
	ProviderPaymentID string
	Event             string
	Paid              bool
	Amount            string
	Currency          string
	Metadata          map[string]string
}

var callbackEvents = map[string]models.PaymentStatus{
	"payment.succeeded":           models.PaymentStatusSucceeded,
	"payment.waiting_for_capture": models.PaymentStatusWaitingForCapture,
	"payment.canceled":            models.PaymentStatusCanceled,
	"refund.succeeded":            models.PaymentStatusRefunded,
}

// StatusForEvent maps a provider event name to the mirrored payment status.
func StatusForEvent(event string) (models.PaymentStatus, bool) {
	st, ok := callbackEvents[event]
	return st, ok
}

// terminal states share a rank so succeeded and canceled never overwrite each other.
var paymentRank = map[models.PaymentStatus]int{
	models.PaymentStatusPending:           0,
	models.PaymentStatusWaitingForCapture: 1,
	models.PaymentStatusSucceeded:         2,
	models.PaymentStatusCanceled:          2,
	models.PaymentStatusRefunded:          3,
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PaymentService) currency() string {
	if s.Currency == "" {
		return "RUB"
	}
	return s.Currency
}

// CreatePayment opens a provider payment for a Created order owned by the
// actor and mirrors it locally as pending.
func (s *PaymentService) CreatePayment(ctx context.Context, a actor.Actor, orderID uuid.UUID) (*models.Payment, error) {
	if s.Provider == nil {
		return nil, fmt.Errorf("%w: payments are not configured", ErrUpstream)
	}
	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !access.CanAccess(a, order.Owner(), access.Mutate) {
		return nil, fmt.Errorf("%w: order belongs to another owner", ErrForbidden)
	}
	if order.Status != models.OrderStatusCreated {
		return nil, fmt.Errorf("%w: order in status %s cannot be paid", ErrValidation, order.Status)
	}

	l := logging.FromContext(ctx).With("order_id", order.ID)
	key := fmt.Sprintf("%s-%d", order.ID, s.now().UnixNano())
	req := paymentclient.CreatePaymentRequest{
		Amount:       paymentclient.Amount{Value: order.TotalPrice.StringFixed(2), Currency: s.currency()},
		Capture:      true,
		Confirmation: paymentclient.Confirmation{Type: "redirect", ReturnURL: s.ReturnURL},
		Description:  fmt.Sprintf("Order %s", order.ID),
		Metadata:     map[string]string{"order_id": order.ID.String()},
	}

	// no transaction is held across the provider call
	remote, err := s.Provider.CreatePayment(ctx, key, req)
	if err != nil {
		l.Error("payment_provider_failed", "error", err)
		return nil, fmt.Errorf("%w: payment provider: %v", ErrUpstream, err)
	}

	confirmationURL := ""
	if remote.Confirmation != nil {
		confirmationURL = remote.Confirmation.ConfirmationURL
	}
	meta, _ := json.Marshal(remote.Metadata)

	p := &models.Payment{
		ProviderPaymentID: remote.ID,
		OrderID:           &order.ID,
		Amount:            order.TotalPrice,
		Currency:          s.currency(),
		Status:            models.PaymentStatusPending,
		Paid:              remote.Paid,
		Description:       req.Description,
		ConfirmationURL:   confirmationURL,
		Metadata:          string(meta),
		Test:              remote.Test,
	}
	p.UserID, p.GuestID = order.UserID, order.GuestID

	inserted, err := s.Repo.InsertPayment(ctx, p)
	if err != nil {
		return nil, err
	}
	if !inserted {
		if err := s.Repo.SetPaymentConfirmationURL(ctx, remote.ID, confirmationURL); err != nil {
			return nil, err
		}
	}

	l.Info("payment_created", "payment_id", remote.ID, "amount", order.TotalPrice.StringFixed(2))
	publish(ctx, s.Events, events.TopicPayments, remote.ID, map[string]any{
		"type": "payment_created", "payment_id": remote.ID, "order_id": order.ID,
		"amount": order.TotalPrice.StringFixed(2), "currency": s.currency(),
	})
	return s.Repo.PaymentByProviderID(ctx, remote.ID)
}

func (s *PaymentService) GetPayment(ctx context.Context, a actor.Actor, providerID string) (*models.Payment, error) {
	p, err := s.Repo.PaymentByProviderID(ctx, providerID)
	if err != nil {
		return nil, notFound(err, "payment")
	}
	if !access.CanAccess(a, p.Owner(), access.Read) {
		return nil, fmt.Errorf("%w: payment belongs to another owner", ErrForbidden)
	}
	return p, nil
}

// ApplyCallback records a provider notification. Redelivered or out-of-order
// callbacks never move a payment backwards; it reports whether anything changed.
func (s *PaymentService) ApplyCallback(ctx context.Context, cb PaymentCallback) (bool, error) {
	result := "error"
	defer func() {
		if s.Metrics != nil {
			s.Metrics.PaymentCallbacks.WithLabelValues(cb.Event, result).Inc()
		}
	}()

	status, ok := StatusForEvent(cb.Event)
	if !ok {
		return false, fmt.Errorf("%w: unsupported event %q", ErrValidation, cb.Event)
	}
	if cb.ProviderPaymentID == "" {
		return false, fmt.Errorf("%w: payment id required", ErrValidation)
	}
	meta, err := json.Marshal(cb.Metadata)
	if err != nil {
		return false, err
	}

	var (
		payment   *models.Payment
		applied   bool
		advanced  bool
		fromOrder models.OrderStatus
	)
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cur, err := tx.PaymentByProviderIDForUpdate(ctx, cb.ProviderPaymentID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var inserted bool
			cur, inserted, err = s.paymentFromCallback(ctx, tx, cb, status, string(meta))
			if err != nil {
				return err
			}
			if inserted {
				applied = true
				break
			}
			// another delivery created the row first
			if cur, err = tx.PaymentByProviderIDForUpdate(ctx, cb.ProviderPaymentID); err != nil {
				return err
			}
			if applied, err = updateIfNewer(ctx, tx, cur, status, cb.Paid, string(meta)); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if applied, err = updateIfNewer(ctx, tx, cur, status, cb.Paid, string(meta)); err != nil {
				return err
			}
		}
		payment = cur
		if !applied {
			return nil
		}

		if s.AdvanceOrders && status == models.PaymentStatusSucceeded && payment.OrderID != nil {
			fromOrder, advanced, err = advanceIfCreated(ctx, tx, *payment.OrderID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	result = "ignored"
	if !applied {
		return false, nil
	}
	result = "applied"

	ctx, cancel := afterCommit(ctx)
	defer cancel()

	l := logging.FromContext(ctx)
	l.Info("payment_updated", "payment_id", payment.ProviderPaymentID, "status", payment.Status, "paid", payment.Paid)
	audit(ctx, s.Repo, payment.Owner(), "payment_updated", map[string]any{
		"payment_id": payment.ProviderPaymentID, "event": cb.Event, "status": payment.Status,
	})
	publish(ctx, s.Events, events.TopicPayments, payment.ProviderPaymentID, map[string]any{
		"type": "payment_updated", "payment_id": payment.ProviderPaymentID, "order_id": payment.OrderID,
		"status": payment.Status, "paid": payment.Paid,
	})

	if advanced {
		order, err := s.Repo.OrderByID(ctx, *payment.OrderID)
		if err != nil {
			l.Warn("order_reload_failed", "order_id", *payment.OrderID, "error", err)
			return true, nil
		}
		audit(ctx, s.Repo, order.Owner(), "order_status_changed", map[string]any{
			"order_id": order.ID, "from": fromOrder, "to": order.Status,
		})
		if s.Notifier != nil {
			if err := s.Notifier.OrderStatusChanged(ctx, order, fromOrder); err != nil {
				l.Warn("order_status_notify_failed", "order_id", order.ID, "error", err)
			}
		}
	}
	return true, nil
}

// paymentFromCallback creates the mirror row for a payment we have not seen,
// taking its owner from the order named in metadata.
func (s *PaymentService) paymentFromCallback(ctx context.Context, tx *repo.GormRepo, cb PaymentCallback, status models.PaymentStatus, meta string) (*models.Payment, bool, error) {
	raw := cb.Metadata["order_id"]
	if raw == "" {
		return nil, false, fmt.Errorf("%w: unknown payment %s without order_id", ErrValidation, cb.ProviderPaymentID)
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: bad order_id %q", ErrValidation, raw)
	}
	order, err := tx.OrderByID(ctx, orderID)
	if err != nil {
		return nil, false, notFound(err, "order")
	}

	amount, err := decimal.NewFromString(cb.Amount)
	if err != nil {
		amount = order.TotalPrice
	}
	currency := cb.Currency
	if currency == "" {
		currency = s.currency()
	}

	p := &models.Payment{
		ProviderPaymentID: cb.ProviderPaymentID,
		OrderID:           &order.ID,
		Amount:            amount,
		Currency:          currency,
		Status:            status,
		Paid:              cb.Paid,
		Metadata:          meta,
	}
	p.UserID, p.GuestID = order.UserID, order.GuestID
	inserted, err := tx.InsertPayment(ctx, p)
	if err != nil {
		return nil, false, err
	}
	return p, inserted, nil
}

// updateIfNewer stores the callback state on cur when it supersedes it.
func updateIfNewer(ctx context.Context, tx *repo.GormRepo, cur *models.Payment, status models.PaymentStatus, paid bool, meta string) (bool, error) {
	if !supersedes(cur, status, paid, meta) {
		return false, nil
	}
	if err := tx.UpdatePaymentState(ctx, cur.ProviderPaymentID, status, paid, meta); err != nil {
		return false, err
	}
	cur.Status, cur.Paid, cur.Metadata = status, paid, meta
	return true, nil
}

func supersedes(cur *models.Payment, status models.PaymentStatus, paid bool, meta string) bool {
	if status == cur.Status {
		return paid != cur.Paid || meta != cur.Metadata
	}
	return paymentRank[status] > paymentRank[cur.Status]
}

func advanceIfCreated(ctx context.Context, tx *repo.GormRepo, orderID uuid.UUID) (models.OrderStatus, bool, error) {
	order, err := tx.OrderByIDForUpdate(ctx, orderID)
	if err != nil {
		return "", false, notFound(err, "order")
	}
	if order.Status != models.OrderStatusCreated {
		return order.Status, false, nil
	}
	return advance(ctx, tx, orderID, models.OrderStatusProcessing)
}

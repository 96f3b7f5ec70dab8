package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/hash"
	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/transport"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
	// Webhook basic auth; checking is off when WebhookPasswordHash is empty.
	WebhookUser         string
	WebhookPasswordHash string
}

func (h *PaymentHTTP) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create")

	var req transport.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_payment_error", "invalid body", err)
	}

	p, err := h.Svc.CreatePayment(ctx, actorFrom(c), req.OrderID)
	if err != nil {
		return fail(l, "create_payment_error", err)
	}

	l.Info("create_payment_success", "payment_id", p.ProviderPaymentID)
	return c.JSON(http.StatusCreated, transport.NewPaymentResponse(p))
}

func (h *PaymentHTTP) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.get")

	p, err := h.Svc.GetPayment(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		return fail(l, "get_payment_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaymentResponse(p))
}

// Webhook answers 200 to every authenticated delivery, reporting processing
// failures in the body so the provider does not retry.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	if h.WebhookPasswordHash != "" {
		user, pass, ok := c.Request().BasicAuth()
		if !ok || !hash.CheckBasicAuth(h.WebhookUser, h.WebhookPasswordHash, user, pass) {
			l.Warn("payment_webhook_unauthorized", "status", http.StatusUnauthorized)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
	}

	var n transport.PaymentNotification
	if err := c.Bind(&n); err != nil {
		l.Error("payment_webhook_error", "reason", "invalid body", "error", err)
		return c.JSON(http.StatusOK, map[string]string{"status": "error_processing"})
	}

	applied, err := h.Svc.ApplyCallback(ctx, n.Callback())
	if err != nil {
		l.Error("payment_webhook_error", "event", n.Event, "payment_id", n.Object.ID, "error", err)
		return c.JSON(http.StatusOK, map[string]string{"status": "error_processing"})
	}

	l.Info("payment_webhook_success", "event", n.Event, "payment_id", n.Object.ID, "applied", applied)
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

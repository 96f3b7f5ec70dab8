package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/transport"
	"github.com/Skotchmaster/plant_shop/internal/util"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "create_order_error", "invalid body", err)
		}
	}

	order, err := h.Svc.CreateOrder(ctx, actorFrom(c), req.ContactEmail)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_order_error", "invalid order id", err)
	}

	order, err := h.Svc.GetOrder(ctx, actorFrom(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	orders, total, err := h.Svc.ListMine(ctx, actorFrom(c), offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[transport.OrderResponse]{
		Data: transport.NewOrderList(orders),
		Meta: util.NewMeta(page, limit, total),
	})
}

func (h *OrderHTTP) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	f := service.OrderListFilter{
		Status: models.OrderStatus(c.QueryParam("status")),
		Offset: offset,
		Limit:  limit,
	}
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(l, "list_all_orders_error", "invalid userId", err)
		}
		f.UserID = &id
	}
	switch c.QueryParam("sortBy") {
	case "", "-createdAt":
	case "createdAt":
		f.Asc = true
	default:
		return badRequest(l, "list_all_orders_error", "sortBy must be createdAt or -createdAt", nil)
	}

	orders, total, err := h.Svc.ListAll(ctx, actorFrom(c), f)
	if err != nil {
		return fail(l, "list_all_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[transport.OrderResponse]{
		Data: transport.NewOrderList(orders),
		Meta: util.NewMeta(page, limit, total),
	})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "cancel_order_error", "invalid order id", err)
	}

	order, err := h.Svc.CancelOrder(ctx, actorFrom(c), id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_order_status_error", "invalid order id", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status_error", "invalid body", err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(l, "update_order_status_error", err.Error(), err)
	}

	order, err := h.Svc.AdvanceStatus(ctx, actorFrom(c), id, models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) LinkGuestOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.link_guest")

	n, err := h.Svc.LinkGuestOrders(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "link_guest_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"linked": n})
}

package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/transport"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.GetCart(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(view))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_cart_item_error", "invalid body", err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(l, "add_cart_item_error", err.Error(), err)
	}

	view, err := h.Svc.AddLine(ctx, actorFrom(c), req.ProductID, models.Variant(req.Variant), req.Quantity)
	if err != nil {
		return fail(l, "add_cart_item_error", err)
	}

	l.Info("add_cart_item_success", "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, transport.NewCartResponse(view))
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_cart_item_error", "invalid cart item id", err)
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item_error", "invalid body", err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(l, "update_cart_item_error", err.Error(), err)
	}

	view, err := h.Svc.UpdateQuantity(ctx, actorFrom(c), lineID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(view))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "remove_cart_item_error", "invalid cart item id", err)
	}

	view, err := h.Svc.RemoveLine(ctx, actorFrom(c), lineID)
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(view))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	view, err := h.Svc.Clear(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}
	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, transport.NewCartResponse(view))
}

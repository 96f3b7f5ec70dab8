package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/transport"
	"github.com/Skotchmaster/plant_shop/internal/util"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type FavoriteHTTP struct {
	Svc *service.FavoriteService
}

func (h *FavoriteHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.add")

	var req transport.FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_favorite_error", "invalid body", err)
	}
	if req.ProductID == uuid.Nil {
		return badRequest(l, "add_favorite_error", "productId required", nil)
	}

	if err := h.Svc.Add(ctx, actorFrom(c), req.ProductID); err != nil {
		return fail(l, "add_favorite_error", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"product_id": req.ProductID, "is_favorite": true})
}

func (h *FavoriteHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.remove")

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return badRequest(l, "remove_favorite_error", "invalid product id", err)
	}
	if err := h.Svc.Remove(ctx, actorFrom(c), id); err != nil {
		return fail(l, "remove_favorite_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FavoriteHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.list")

	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	items, total, err := h.Svc.List(ctx, actorFrom(c), offset, limit)
	if err != nil {
		return fail(l, "list_favorites_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[transport.FavoriteResponse]{
		Data: transport.NewFavoriteList(items),
		Meta: util.NewMeta(page, limit, total),
	})
}

func (h *FavoriteHTTP) Check(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.check")

	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return badRequest(l, "check_favorite_error", "invalid product id", err)
	}
	ok, err := h.Svc.IsFavorite(ctx, actorFrom(c), id)
	if err != nil {
		return fail(l, "check_favorite_error", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_favorite": ok})
}

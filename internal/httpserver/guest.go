package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/internal/transport"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

type GuestHTTP struct {
	Svc *service.GuestService
}

func (h *GuestHTTP) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "guest.create_session")

	sess, err := h.Svc.CreateSession(ctx, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return fail(l, "create_guest_session_error", err)
	}
	return c.JSON(http.StatusCreated, transport.GuestSessionResponse{GuestID: sess.ID, ExpiresAt: sess.ExpiresAt})
}

// Migrate moves the cart and favorites of the guest named in the guest
// header into the authenticated caller's account.
func (h *GuestHTTP) Migrate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.migrate")

	guestID := strings.TrimSpace(c.Request().Header.Get(HeaderGuestID))
	if guestID == "" {
		return badRequest(l, "migrate_cart_error", "guest id header required", nil)
	}

	res, err := h.Svc.Migrate(ctx, guestID, actorFrom(c).UserID())
	if err != nil {
		return fail(l, "migrate_cart_error", err)
	}

	l.Info("migrate_cart_success", "moved_lines", res.MovedLines, "merged_lines", res.MergedLines)
	return c.JSON(http.StatusOK, res)
}

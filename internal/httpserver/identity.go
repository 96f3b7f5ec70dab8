package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/plant_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/plant_shop/pkg/tokens"
)

const (
	HeaderGuestID     = "X-Guest-Id"
	accessTokenCookie = "accessToken"
)

type GuestToucher interface {
	Touch(ctx context.Context, guestID string) (bool, error)
}

// Identity resolves the caller from a bearer token (header or accessToken
// cookie) or, failing that, from a live guest session header.
type Identity struct {
	JWTSecret []byte
	Guests    GuestToucher
}

func (m *Identity) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if raw := bearerToken(c); raw != "" {
			claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
			if err != nil || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
			}
			c.Set(loggingmw.ActorKey, actor.UserWithEmail(userID, claims.Role, claims.Email))
			return next(c)
		}

		if guestID := strings.TrimSpace(c.Request().Header.Get(HeaderGuestID)); guestID != "" {
			ok, err := m.Guests.Touch(ctx, guestID)
			if err != nil {
				logging.FromContext(ctx).Error("guest_session_check_failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "guest session expired or unknown")
			}
			c.Set(loggingmw.ActorKey, actor.Guest(guestID))
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(accessTokenCookie); err == nil {
		return ck.Value
	}
	return ""
}

func actorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(loggingmw.ActorKey).(actor.Actor)
	return a
}

// RequireIdentity rejects anonymous callers.
func RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := actorFrom(c).Owner(); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication or guest session required")
		}
		return next(c)
	}
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !actorFrom(c).IsUser() {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		a := actorFrom(c)
		if !a.IsUser() {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !a.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

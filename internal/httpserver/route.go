package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/plant_shop/pkg/metrics"
)

type Deps struct {
	Identity *Identity
	Metrics  *metrics.ServerMetrics

	Health    *HealthHTTP
	Guest     *GuestHTTP
	Cart      *CartHTTP
	Orders    *OrderHTTP
	Favorites *FavoriteHTTP
	Payments  *PaymentHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	e.POST("/guest/session", d.Guest.CreateSession)
	e.POST("/payments/webhook", d.Payments.Webhook)

	api := e.Group("", d.Identity.Resolve)

	cart := api.Group("/cart")
	cart.POST("/migrate", d.Guest.Migrate, RequireUser)
	cart.GET("", d.Cart.GetCart, RequireIdentity)
	cart.POST("", d.Cart.AddItem, RequireIdentity)
	cart.DELETE("", d.Cart.Clear, RequireIdentity)
	cart.PUT("/:id", d.Cart.UpdateItem, RequireIdentity)
	cart.DELETE("/:id", d.Cart.RemoveItem, RequireIdentity)

	orders := api.Group("/orders")
	orders.GET("/all", d.Orders.ListAllOrders, RequireAdmin)
	orders.POST("/link", d.Orders.LinkGuestOrders, RequireUser)
	orders.PATCH("/:id/status", d.Orders.UpdateStatus, RequireAdmin)
	orders.POST("", d.Orders.CreateOrder, RequireIdentity)
	orders.GET("", d.Orders.ListOrders, RequireIdentity)
	orders.GET("/:id", d.Orders.GetOrder, RequireIdentity)
	orders.POST("/:id/cancel", d.Orders.CancelOrder, RequireIdentity)

	favorites := api.Group("/favorites", RequireIdentity)
	favorites.POST("", d.Favorites.Add)
	favorites.GET("", d.Favorites.List)
	favorites.GET("/:productId", d.Favorites.Check)
	favorites.DELETE("/:productId", d.Favorites.Remove)

	payments := api.Group("/payments", RequireIdentity)
	payments.POST("", d.Payments.CreatePayment)
	payments.GET("/:id", d.Payments.GetPayment)
}

package httpserver

import (
	"context"
	"net/http"

	middleware "github.com/Skotchmaster/silkroad/pkg/middleware/auth"
	"github.com/Skotchmaster/silkroad/pkg/middleware/csrf"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AccountHandler *AccountHTTP
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.Middleware(d.JWTSecret)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	api := e.Group("/api/v1", csrf.Middleware(csrf.DefaultConfig()))

	api.POST("/accounts", d.AccountHandler.Register)
	api.POST("/accounts/login", d.AccountHandler.Login)
	me := api.Group("/accounts/me", authMW)
	me.GET("", d.AccountHandler.Me)
	me.DELETE("", d.AccountHandler.Deactivate)

	api.GET("/products", d.CatalogHandler.ListProducts)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)
	api.GET("/tracking/:tracking", d.OrderHandler.Track)

	cart := api.Group("/cart", authMW)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.Clear)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateLine)
	cart.DELETE("/items/:id", d.CartHandler.RemoveLine)
	cart.POST("/validate", d.CartHandler.Validate)
	cart.POST("/checkout", d.OrderHandler.Checkout)

	orders := api.Group("/orders", authMW)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.GetMine)
	orders.POST("/:id/cancel", d.OrderHandler.CancelMine)

	admin := api.Group("/admin", authMW, adminOnly)
	admin.GET("/orders", d.OrderHandler.ListByStatus)
	admin.GET("/orders/:id", d.OrderHandler.Get)
	admin.POST("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.POST("/orders/:id/cancel", d.OrderHandler.Cancel)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id/price", d.CatalogHandler.UpdatePrice)
	admin.POST("/products/:id/restock", d.CatalogHandler.Restock)
	admin.POST("/products/:id/deactivate", d.CatalogHandler.Deactivate)
	admin.POST("/products/:id/activate", d.CatalogHandler.Activate)
}

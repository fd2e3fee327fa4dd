package server

import (
	"storefront/internal/metrics"
	appmw "storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	// テナント不要
	d.Health.RegisterRoutes(e)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	// テナント必須
	g := e.Group("", appmw.TenantScope())
	d.Cart.RegisterRoutes(g)
	d.Checkout.RegisterRoutes(g)
	d.Order.RegisterRoutes(g)
}

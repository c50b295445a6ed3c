package server

import (
	"bakery/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health      *handler.HealthHandler
	Products    *handler.ProductHandler
	Orders      *handler.OrderHandler
	Lifecycle   *handler.OrderLifecycleHandler
	Identifiers *handler.IdentifierHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, gatherer prometheus.Gatherer) {
	if h.Health != nil {
		h.Health.RegisterRoutes(e)
	}
	h.Products.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e)
	h.Lifecycle.RegisterRoutes(e)
	h.Identifiers.RegisterRoutes(e)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

package handler

import (
	"context"
	"net/http"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// check が nil ならプロセスが生きていれば ok
type HealthHandler struct {
	check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
}

func (h *HealthHandler) health(c echo.Context) error {
	if h.check != nil {
		if err := h.check(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store unreachable", Kind: usecase.KindConnection})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

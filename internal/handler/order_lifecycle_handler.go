package handler

import (
	"net/http"
	"strconv"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ステータス変更と削除（在庫戻しあり）
type OrderLifecycleHandler struct {
	uc *usecase.OrderLifecycleUsecase
}

func NewOrderLifecycleHandler(uc *usecase.OrderLifecycleUsecase) *OrderLifecycleHandler {
	return &OrderLifecycleHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *OrderLifecycleHandler) RegisterRoutes(e *echo.Echo) {
	e.PUT("/orders/:id/status", h.updateStatus)
	e.DELETE("/orders/:id", h.remove)
}

func (h *OrderLifecycleHandler) updateStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SetStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderLifecycleHandler) remove(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.DeleteOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

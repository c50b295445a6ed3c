package handler

import (
	"net/http"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 再利用待ちIDのプール
type IdentifierHandler struct {
	uc *usecase.IdentifierUsecase
}

func NewIdentifierHandler(uc *usecase.IdentifierUsecase) *IdentifierHandler {
	return &IdentifierHandler{uc: uc}
}

type ExcludedResponse struct {
	Kind string  `json:"kind"`
	IDs  []int64 `json:"ids"`
}

func (h *IdentifierHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/identifiers/:kind/excluded", h.list)
	e.DELETE("/identifiers/:kind/excluded", h.clear)
}

func (h *IdentifierHandler) list(c echo.Context) error {
	kind, err := usecase.ParseIdentifierKind(c.Param("kind"))
	if err != nil {
		return writeError(c, err)
	}

	ids, err := h.uc.ListExcluded(c.Request().Context(), kind)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ExcludedResponse{Kind: string(kind), IDs: ids})
}

func (h *IdentifierHandler) clear(c echo.Context) error {
	kind, err := usecase.ParseIdentifierKind(c.Param("kind"))
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ClearExcluded(c.Request().Context(), kind)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

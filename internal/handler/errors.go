package handler

import (
	"errors"
	"net/http"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error      string            `json:"error"`
	Kind       usecase.ErrorKind `json:"kind,omitempty"`
	References int64             `json:"references,omitempty"`
}

func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindValidation, usecase.KindInvalidStatus:
		return http.StatusBadRequest
	case usecase.KindInsufficientStock, usecase.KindReferentialIntegrity:
		return http.StatusConflict
	case usecase.KindConnection:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok {
		msg := ue.Message
		if ue.Kind == usecase.KindInternal {
			// 中身は出さない
			msg = "internal error"
		}
		return c.JSON(statusOf(ue.Kind), ErrorResponse{Error: msg, Kind: ue.Kind, References: ue.References})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: usecase.KindInternal})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: usecase.KindValidation})
}

// HTTPErrorHandler はルーティング等の echo のエラーも同じ形で返す
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg})
		return
	}
	_ = writeError(c, err)
}

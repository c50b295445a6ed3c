package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := map[usecase.ErrorKind]int{
		usecase.KindNotFound:             http.StatusNotFound,
		usecase.KindValidation:           http.StatusBadRequest,
		usecase.KindInvalidStatus:        http.StatusBadRequest,
		usecase.KindInsufficientStock:    http.StatusConflict,
		usecase.KindReferentialIntegrity: http.StatusConflict,
		usecase.KindConnection:           http.StatusServiceUnavailable,
		usecase.KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusOf(kind), "kind %s", kind)
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := &usecase.Error{Kind: usecase.KindInternal, Message: "db error", Err: errors.New("pq: secret detail")}
	assert.NoError(t, writeError(c, err))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestWriteError_PlainError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	assert.NoError(t, writeError(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

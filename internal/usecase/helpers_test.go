package usecase_test

import (
	"context"
	"strings"
	"testing"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/infra/memory"
	"bakery/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memory ストアで usecase 一式を組み立てる
type fixture struct {
	store       *memory.Store
	products    *usecase.ProductUsecase
	orders      *usecase.OrderUsecase
	lifecycle   *usecase.OrderLifecycleUsecase
	identifiers *usecase.IdentifierUsecase
}

func newFixture(t *testing.T, policy config.RestockPolicy) *fixture {
	t.Helper()
	s := memory.NewStore()
	alloc := usecase.NewIdentifierAllocator(nil)
	return &fixture{
		store:       s,
		products:    usecase.NewProductUsecase(s, alloc, nil),
		orders:      usecase.NewOrderUsecase(s, nil, nil),
		lifecycle:   usecase.NewOrderLifecycleUsecase(s, policy, nil, nil),
		identifiers: usecase.NewIdentifierUsecase(s),
	}
}

func (f *fixture) addProduct(t *testing.T, name string, stock int64) model.Product {
	t.Helper()
	p, err := f.products.AddProduct(context.Background(), usecase.AddProductInput{
		Name:  name,
		Price: decimal.RequireFromString("4.50"),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	n, err := f.products.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) order(t *testing.T, customer string, lines ...usecase.OrderLineRequest) usecase.CreateOrderOutput {
	t.Helper()
	out, err := f.orders.CreateOrder(context.Background(), usecase.CreateOrderInput{
		CustomerName: customer,
		Lines:        lines,
	})
	require.NoError(t, err)
	return out
}

func line(productID, qty int64) usecase.OrderLineRequest {
	return usecase.OrderLineRequest{ProductID: productID, Quantity: qty}
}

func assertKind(t *testing.T, err error, kind usecase.ErrorKind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind, usecase.KindOf(err), "err=%v", err)
	}
}

// HTTPエラーの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

package repository

import (
	"context"
	"time"

	"bakery/internal/domain/model"
)

// 注文＋明細＋商品名を結合した一覧の1行
type OrderLineView struct {
	OrderID      int64
	CustomerName string
	ProductID    int64
	ProductName  string
	Quantity     int64
	Status       model.OrderStatus
	CreatedAt    time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	MarkStockReturned(ctx context.Context, orderID int64) error
	Delete(ctx context.Context, orderID int64) error

	// 明細を持つ注文だけ（INNER JOIN）
	ListWithLines(ctx context.Context) ([]OrderLineView, error)
}

type OrderLineItemRepository interface {
	Create(ctx context.Context, item model.OrderLineItem) (model.OrderLineItem, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error

	// 商品を参照している明細の件数（削除ガード用）
	CountByProductID(ctx context.Context, productID int64) (int64, error)
}

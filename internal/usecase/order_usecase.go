package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakery/internal/domain/model"
	"bakery/internal/logging"
	"bakery/internal/metrics"
	repo "bakery/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	log     *zap.Logger
	metrics metrics.Recorder
}

func NewOrderUsecase(tx repo.TransactionManager, log *zap.Logger, m metrics.Recorder) *OrderUsecase {
	return &OrderUsecase{
		tx:      tx,
		log:     logging.OrNop(log),
		metrics: metrics.OrNop(m),
	}
}

type OrderLineRequest struct {
	ProductID int64
	Quantity  int64
}

type CreateOrderInput struct {
	CustomerName string
	Lines        []OrderLineRequest
}

type LineStatus string

const (
	LineCommitted LineStatus = "committed"
	LineSkipped   LineStatus = "skipped"
)

// 明細1行ごとの結果（スキップ理由つき）
type LineOutcome struct {
	ProductID int64      `json:"product_id"`
	Quantity  int64      `json:"quantity"`
	Status    LineStatus `json:"status"`
	Reason    ErrorKind  `json:"reason,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// 注文全体としてどこまで満たせたか
type Fulfillment string

const (
	FulfillmentFulfilled Fulfillment = "fulfilled"
	FulfillmentPartial   Fulfillment = "partial"
	FulfillmentEmpty     Fulfillment = "empty"
)

type OrderItemOutput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	CustomerName  string            `json:"customer_name"`
	Status        model.OrderStatus `json:"status"`
	StockReturned bool              `json:"stock_returned"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

type CreateOrderOutput struct {
	Order       OrderOutput   `json:"order"`
	Lines       []LineOutcome `json:"lines"`
	Fulfillment Fulfillment   `json:"fulfillment"`
}

// CreateOrder は注文を Pending で作り、明細を1行ずつ確定する。
// 商品が無い・在庫が足りない・数量が不正な行はスキップして結果に残す（注文自体は作る）。
// 各行は SAVEPOINT の中で「明細作成＋在庫減算」をまとめて行う。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return CreateOrderOutput{}, NewError(KindValidation, "customer_name required")
	}
	if len(name) > 255 {
		return CreateOrderOutput{}, NewError(KindValidation, "customer_name too long")
	}

	var out CreateOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().Create(ctx, model.Order{
			CustomerName: name,
			Status:       model.OrderStatusPending,
		})
		if err != nil {
			return storeError(err, "order not found")
		}

		outcomes := make([]LineOutcome, 0, len(in.Lines))
		items := make([]model.OrderLineItem, 0, len(in.Lines))

		for _, l := range in.Lines {
			if l.Quantity <= 0 {
				outcomes = append(outcomes, LineOutcome{
					ProductID: l.ProductID,
					Quantity:  l.Quantity,
					Status:    LineSkipped,
					Reason:    KindValidation,
					Message:   "quantity must be > 0",
				})
				continue
			}

			var item model.OrderLineItem
			lineErr := r.Savepoint(ctx, func(sp repo.TxRepos) error {
				var err error
				item, err = reserveLine(ctx, sp, order.ID, l)
				return err
			})

			if lineErr != nil {
				switch kind := KindOf(lineErr); kind {
				case KindNotFound, KindInsufficientStock:
					//行単位の失敗は注文全体を止めない
					outcomes = append(outcomes, LineOutcome{
						ProductID: l.ProductID,
						Quantity:  l.Quantity,
						Status:    LineSkipped,
						Reason:    kind,
						Message:   errorMessage(lineErr),
					})
					continue
				default:
					return lineErr
				}
			}

			items = append(items, item)
			outcomes = append(outcomes, LineOutcome{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Status:    LineCommitted,
			})
		}

		out = CreateOrderOutput{
			Order:       toOrderOutput(order, items),
			Lines:       outcomes,
			Fulfillment: fulfillmentOf(len(in.Lines), len(items)),
		}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, storeError(err, "order not found")
	}

	for _, o := range out.Lines {
		u.metrics.OrderLine(lineMetricLabel(o))
		if o.Status == LineSkipped {
			u.log.Info("order line skipped",
				zap.Int64("order_id", out.Order.ID),
				zap.Int64("product_id", o.ProductID),
				zap.Int64("quantity", o.Quantity),
				zap.String("reason", string(o.Reason)),
			)
		}
	}
	u.metrics.OrderCreated(string(out.Fulfillment))
	u.log.Info("order created",
		zap.Int64("order_id", out.Order.ID),
		zap.String("fulfillment", string(out.Fulfillment)),
		zap.Int("lines", len(out.Order.Items)),
	)

	return out, nil
}

// 商品行をロックして在庫を確認し、明細作成と在庫減算を行う
func reserveLine(ctx context.Context, r repo.TxRepos, orderID int64, l OrderLineRequest) (model.OrderLineItem, error) {
	if l.ProductID <= 0 {
		return model.OrderLineItem{}, NewError(KindNotFound, fmt.Sprintf("product %d not found", l.ProductID))
	}
	p, err := r.Products().FindByIDForUpdate(ctx, l.ProductID)
	if err != nil {
		return model.OrderLineItem{}, storeError(err, fmt.Sprintf("product %d not found", l.ProductID))
	}
	if l.Quantity > p.Stock {
		return model.OrderLineItem{}, NewError(KindInsufficientStock,
			fmt.Sprintf("product %d has %d in stock, %d requested", l.ProductID, p.Stock, l.Quantity))
	}

	item, err := r.OrderLineItems().Create(ctx, model.OrderLineItem{
		OrderID:   orderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
	})
	if err != nil {
		return model.OrderLineItem{}, storeError(err, fmt.Sprintf("product %d not found", l.ProductID))
	}

	ok, err := r.Inventory().ApplyDeltaIfEnough(ctx, l.ProductID, -l.Quantity)
	if err != nil {
		return model.OrderLineItem{}, storeError(err, fmt.Sprintf("product %d not found", l.ProductID))
	}
	if !ok {
		return model.OrderLineItem{}, NewError(KindInsufficientStock,
			fmt.Sprintf("product %d has %d in stock, %d requested", l.ProductID, p.Stock, l.Quantity))
	}
	return item, nil
}

func fulfillmentOf(requested, committed int) Fulfillment {
	switch {
	case committed == 0:
		return FulfillmentEmpty
	case committed == requested:
		return FulfillmentFulfilled
	default:
		return FulfillmentPartial
	}
}

func lineMetricLabel(o LineOutcome) string {
	if o.Status == LineCommitted {
		return string(LineCommitted)
	}
	return string(o.Reason)
}

func errorMessage(err error) string {
	if ue, ok := AsError(err); ok {
		return ue.Message
	}
	return err.Error()
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewError(KindValidation, "invalid order id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return storeError(err, "order not found")
		}

		items, err := r.OrderLineItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return storeError(err, "order not found")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, storeError(err, "order not found")
	}
	return out, nil
}

// 一覧画面用（注文×明細×商品名）
type OrderLineRow struct {
	OrderID      int64             `json:"order_id"`
	CustomerName string            `json:"customer_name"`
	ProductID    int64             `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Quantity     int64             `json:"quantity"`
	Status       model.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (u *OrderUsecase) ListWithLines(ctx context.Context) ([]OrderLineRow, error) {
	var rows []OrderLineRow

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		views, err := r.Orders().ListWithLines(ctx)
		if err != nil {
			return storeError(err, "order not found")
		}

		rows = make([]OrderLineRow, 0, len(views))
		for _, v := range views {
			rows = append(rows, OrderLineRow(v))
		}
		return nil
	})

	if err != nil {
		return []OrderLineRow{}, storeError(err, "order not found")
	}
	return rows, nil
}

func toOrderOutput(o model.Order, items []model.OrderLineItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		Status:        o.Status,
		StockReturned: o.StockReturned,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}

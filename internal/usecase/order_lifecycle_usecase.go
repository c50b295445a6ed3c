package usecase

import (
	"context"
	"fmt"

	"bakery/internal/config"
	"bakery/internal/domain/model"
	"bakery/internal/logging"
	"bakery/internal/metrics"
	repo "bakery/internal/repository"

	"go.uber.org/zap"
)

// 在庫戻しの理由（メトリクスのラベル）
const (
	restockReasonCancel = "cancel"
	restockReasonDelete = "delete"
)

// ステータス遷移と、キャンセル・削除時の在庫戻しを扱う
type OrderLifecycleUsecase struct {
	tx      repo.TransactionManager
	policy  config.RestockPolicy
	log     *zap.Logger
	metrics metrics.Recorder
}

func NewOrderLifecycleUsecase(tx repo.TransactionManager, policy config.RestockPolicy, log *zap.Logger, m metrics.Recorder) *OrderLifecycleUsecase {
	if policy == "" {
		policy = config.RestockOnce
	}
	return &OrderLifecycleUsecase{
		tx:      tx,
		policy:  policy,
		log:     logging.OrNop(log),
		metrics: metrics.OrNop(m),
	}
}

type Restock struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type StatusChangeOutput struct {
	Order     OrderOutput       `json:"order"`
	Previous  model.OrderStatus `json:"previous_status"`
	Restocked []Restock         `json:"restocked"`
}

type DeleteOrderOutput struct {
	OrderID   int64             `json:"order_id"`
	Previous  model.OrderStatus `json:"previous_status"`
	Restocked []Restock         `json:"restocked"`
}

// SetStatus は注文のステータスを変える。結果が Cancelled なら明細の数量を在庫へ戻す。
//
// RestockOnce: Pending からのみ遷移でき、同じステータスの再設定は何もしない。
// 在庫戻しは注文ごとに1回（stock_returned）。
// RestockLegacy: どのステータスからでも設定でき、Cancelled にするたびに在庫を戻す。
func (u *OrderLifecycleUsecase) SetStatus(ctx context.Context, orderID int64, statusName string) (StatusChangeOutput, error) {
	if orderID <= 0 {
		return StatusChangeOutput{}, NewError(KindValidation, "invalid order id")
	}
	newStatus, err := model.ParseOrderStatus(statusName)
	if err != nil {
		return StatusChangeOutput{}, &Error{Kind: KindInvalidStatus, Message: fmt.Sprintf("invalid status %q", statusName), Err: err}
	}

	var out StatusChangeOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return storeError(err, "order not found")
		}
		out.Previous = o.Status
		out.Restocked = []Restock{}

		if u.policy == config.RestockOnce {
			// すでに同じなら何もしない
			if o.Status == newStatus {
				return u.fillOrder(ctx, r, o, &out.Order)
			}
			// 終端ガード
			if o.Status.Terminal() {
				return NewError(KindInvalidStatus, fmt.Sprintf("cannot change %s order", o.Status))
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			return storeError(err, "order not found")
		}
		o.Status = newStatus

		if newStatus == model.OrderStatusCancelled && u.shouldRestock(o) {
			items, err := r.OrderLineItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return storeError(err, "order not found")
			}
			restocked, err := restockItems(ctx, r, items)
			if err != nil {
				return err
			}
			if err := r.Orders().MarkStockReturned(ctx, orderID); err != nil {
				return storeError(err, "order not found")
			}
			o.StockReturned = true
			out.Restocked = restocked
			out.Order = toOrderOutput(o, items)
			return nil
		}

		return u.fillOrder(ctx, r, o, &out.Order)
	})
	if err != nil {
		return StatusChangeOutput{}, storeError(err, "order not found")
	}

	u.metrics.Restocked(restockReasonCancel, totalUnits(out.Restocked))
	u.log.Info("order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(out.Previous)),
		zap.String("to", string(out.Order.Status)),
		zap.Int64("restocked_units", totalUnits(out.Restocked)),
	)
	return out, nil
}

// DeleteOrder は注文と明細を消し、明細の数量を在庫へ戻す（ステータスに関係なく）。
// RestockOnce ではキャンセル時に戻し済みの注文は二重に戻さない。
func (u *OrderLifecycleUsecase) DeleteOrder(ctx context.Context, orderID int64) (DeleteOrderOutput, error) {
	if orderID <= 0 {
		return DeleteOrderOutput{}, NewError(KindValidation, "invalid order id")
	}

	var out DeleteOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return storeError(err, "order not found")
		}

		//削除前に明細を読む
		items, err := r.OrderLineItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return storeError(err, "order not found")
		}

		if err := r.OrderLineItems().DeleteByOrderID(ctx, orderID); err != nil {
			return storeError(err, "order not found")
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return storeError(err, "order not found")
		}

		out = DeleteOrderOutput{OrderID: orderID, Previous: o.Status, Restocked: []Restock{}}
		if !u.shouldRestock(o) {
			return nil
		}

		restocked, err := restockItems(ctx, r, items)
		if err != nil {
			return err
		}
		out.Restocked = restocked
		return nil
	})
	if err != nil {
		return DeleteOrderOutput{}, storeError(err, "order not found")
	}

	u.metrics.Restocked(restockReasonDelete, totalUnits(out.Restocked))
	u.log.Info("order deleted",
		zap.Int64("order_id", orderID),
		zap.String("status", string(out.Previous)),
		zap.Int64("restocked_units", totalUnits(out.Restocked)),
	)
	return out, nil
}

func (u *OrderLifecycleUsecase) shouldRestock(o model.Order) bool {
	if u.policy == config.RestockLegacy {
		return true
	}
	return !o.StockReturned
}

func (u *OrderLifecycleUsecase) fillOrder(ctx context.Context, r repo.TxRepos, o model.Order, dst *OrderOutput) error {
	items, err := r.OrderLineItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return storeError(err, "order not found")
	}
	*dst = toOrderOutput(o, items)
	return nil
}

// 明細ごとに stock += quantity（商品行をロックして）
func restockItems(ctx context.Context, r repo.TxRepos, items []model.OrderLineItem) ([]Restock, error) {
	out := make([]Restock, 0, len(items))
	for _, it := range items {
		if _, err := adjustStock(ctx, r, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, Restock{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out, nil
}

func totalUnits(rs []Restock) int64 {
	var n int64
	for _, r := range rs {
		n += r.Quantity
	}
	return n
}

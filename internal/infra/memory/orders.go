package memory

import (
	"context"
	"fmt"
	"sort"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type orderRepository struct {
	tx *txRepos
}

func (r *orderRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.tx.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	r.tx.st.orderSeq++
	now := r.tx.now()
	order.ID = r.tx.st.orderSeq
	order.CreatedAt = now
	order.UpdatedAt = now
	r.tx.st.orders[order.ID] = order
	return order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return r.update(orderID, func(o *model.Order) { o.Status = status })
}

func (r *orderRepository) MarkStockReturned(ctx context.Context, orderID int64) error {
	return r.update(orderID, func(o *model.Order) { o.StockReturned = true })
}

func (r *orderRepository) update(orderID int64, fn func(o *model.Order)) error {
	o, ok := r.tx.st.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	fn(&o)
	o.UpdatedAt = r.tx.now()
	r.tx.st.orders[orderID] = o
	return nil
}

// 明細は ON DELETE CASCADE と同じく一緒に消える
func (r *orderRepository) Delete(ctx context.Context, orderID int64) error {
	if _, ok := r.tx.st.orders[orderID]; !ok {
		return repo.ErrNotFound
	}
	for id, it := range r.tx.st.lineItems {
		if it.OrderID == orderID {
			delete(r.tx.st.lineItems, id)
		}
	}
	delete(r.tx.st.orders, orderID)
	return nil
}

func (r *orderRepository) ListWithLines(ctx context.Context) ([]repo.OrderLineView, error) {
	items := sortedLineItems(r.tx.st.lineItems, func(model.OrderLineItem) bool { return true })
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderID < items[j].OrderID })

	rows := make([]repo.OrderLineView, 0, len(items))
	for _, it := range items {
		o, ok := r.tx.st.orders[it.OrderID]
		if !ok {
			continue
		}
		p, ok := r.tx.st.products[it.ProductID]
		if !ok {
			continue
		}
		rows = append(rows, repo.OrderLineView{
			OrderID:      o.ID,
			CustomerName: o.CustomerName,
			ProductID:    it.ProductID,
			ProductName:  p.product.Name,
			Quantity:     it.Quantity,
			Status:       o.Status,
			CreatedAt:    o.CreatedAt,
		})
	}
	return rows, nil
}

type lineItemRepository struct {
	tx *txRepos
}

func (r *lineItemRepository) Create(ctx context.Context, item model.OrderLineItem) (model.OrderLineItem, error) {
	if _, ok := r.tx.st.orders[item.OrderID]; !ok {
		return model.OrderLineItem{}, fmt.Errorf("%w: orders.id=%d", repo.ErrReferenced, item.OrderID)
	}
	if _, ok := r.tx.st.products[item.ProductID]; !ok {
		return model.OrderLineItem{}, fmt.Errorf("%w: products.id=%d", repo.ErrReferenced, item.ProductID)
	}
	r.tx.st.lineSeq++
	item.ID = r.tx.st.lineSeq
	item.CreatedAt = r.tx.now()
	r.tx.st.lineItems[item.ID] = item
	return item, nil
}

func (r *lineItemRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	return sortedLineItems(r.tx.st.lineItems, func(it model.OrderLineItem) bool {
		return it.OrderID == orderID
	}), nil
}

func (r *lineItemRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	for id, it := range r.tx.st.lineItems {
		if it.OrderID == orderID {
			delete(r.tx.st.lineItems, id)
		}
	}
	return nil
}

func (r *lineItemRepository) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	var n int64
	for _, it := range r.tx.st.lineItems {
		if it.ProductID == productID {
			n++
		}
	}
	return n, nil
}

// id 昇順
func sortedLineItems(all map[int64]model.OrderLineItem, keep func(model.OrderLineItem) bool) []model.OrderLineItem {
	out := make([]model.OrderLineItem, 0)
	for _, it := range all {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
